package security

import (
	"sync"
	"time"
)

// BruteForceProtector blocks an IP after repeated failed PIN attempts.
// A successful attempt clears the slate for that IP.
type BruteForceProtector struct {
	mu            sync.Mutex
	attempts      map[string]*ipAttempts
	maxAttempts   int
	blockDuration time.Duration
	stop          chan struct{}
}

type ipAttempts struct {
	count     int
	blockedAt *time.Time
}

func NewBruteForceProtector(maxAttempts int, blockDuration time.Duration) *BruteForceProtector {
	bf := &BruteForceProtector{
		attempts:      make(map[string]*ipAttempts),
		maxAttempts:   maxAttempts,
		blockDuration: blockDuration,
		stop:          make(chan struct{}),
	}
	go bf.cleanup()
	return bf
}

// Check reports whether the IP may attempt authentication.
func (bf *BruteForceProtector) Check(ip string) bool {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	a, ok := bf.attempts[ip]
	if !ok {
		return true
	}

	if a.blockedAt != nil {
		if time.Since(*a.blockedAt) < bf.blockDuration {
			return false
		}
		a.count = 0
		a.blockedAt = nil
	}

	return a.count < bf.maxAttempts
}

func (bf *BruteForceProtector) RecordFailure(ip string) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	a, ok := bf.attempts[ip]
	if !ok {
		a = &ipAttempts{}
		bf.attempts[ip] = a
	}

	a.count++
	if a.count >= bf.maxAttempts {
		now := time.Now()
		a.blockedAt = &now
	}
}

func (bf *BruteForceProtector) RecordSuccess(ip string) {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	delete(bf.attempts, ip)
}

func (bf *BruteForceProtector) Close() {
	close(bf.stop)
}

func (bf *BruteForceProtector) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-bf.stop:
			return
		case <-ticker.C:
			bf.mu.Lock()
			for ip, a := range bf.attempts {
				if a.blockedAt != nil && time.Since(*a.blockedAt) > bf.blockDuration {
					delete(bf.attempts, ip)
				}
			}
			bf.mu.Unlock()
		}
	}
}
