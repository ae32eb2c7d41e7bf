package session

import (
	"context"
	"log"
	"sync"
	"time"

	"gridlink/internal/constants"
)

// MemoryStore keeps sessions in process memory. Expiry is enforced
// lazily on Get and opportunistically by a background sweep; either
// mechanism alone is sufficient for correctness.
type MemoryStore struct {
	sessions sync.Map
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewMemoryStore() *MemoryStore {
	ctx, cancel := context.WithCancel(context.Background())
	st := &MemoryStore{
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}

	st.wg.Add(1)
	go st.cleanupLoop()

	return st
}

func (st *MemoryStore) Save(s *Session) {
	st.sessions.Store(s.Token, s)
}

func (st *MemoryStore) Get(token string) (*Session, bool) {
	val, ok := st.sessions.Load(token)
	if !ok {
		return nil, false
	}
	s := val.(*Session)
	if s.Expired(st.now()) {
		st.sessions.Delete(token)
		return nil, false
	}
	return s, true
}

func (st *MemoryStore) Delete(token string) {
	st.sessions.Delete(token)
}

func (st *MemoryStore) PurgeExpired() {
	now := st.now()
	st.sessions.Range(func(key, value any) bool {
		if value.(*Session).Expired(now) {
			st.sessions.Delete(key)
			log.Printf("🗑 Expired session cleaned up: %s", key)
		}
		return true
	})
}

func (st *MemoryStore) Close() error {
	st.cancel()
	st.wg.Wait()
	return nil
}

func (st *MemoryStore) cleanupLoop() {
	defer st.wg.Done()
	ticker := time.NewTicker(constants.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-st.ctx.Done():
			return
		case <-ticker.C:
			st.PurgeExpired()
		}
	}
}
