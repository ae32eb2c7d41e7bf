package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"gridlink/internal/constants"
)

// RedisStore keeps sessions in Redis under TTL keys, so expiry is
// enforced by Redis itself and PurgeExpired has nothing left to sweep.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRedisStore(host, port, username, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Username: username,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithCancel(context.Background())

	if err := client.Ping(ctx).Err(); err != nil {
		cancel()
		return nil, err
	}

	return &RedisStore{client: client, ctx: ctx, cancel: cancel}, nil
}

func (st *RedisStore) key(token string) string {
	return constants.SessionKeyPrefix + token
}

func (st *RedisStore) Save(s *Session) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("Failed to marshal session: %v", err)
		return
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return
	}

	if err := st.client.Set(st.ctx, st.key(s.Token), data, ttl).Err(); err != nil {
		log.Printf("Failed to save session to Redis: %v", err)
	}
}

func (st *RedisStore) Get(token string) (*Session, bool) {
	data, err := st.client.Get(st.ctx, st.key(token)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("Failed to get session from Redis: %v", err)
		return nil, false
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		log.Printf("Failed to unmarshal session: %v", err)
		return nil, false
	}

	if s.Expired(time.Now()) {
		st.Delete(token)
		return nil, false
	}

	return &s, true
}

func (st *RedisStore) Delete(token string) {
	if err := st.client.Del(st.ctx, st.key(token)).Err(); err != nil {
		log.Printf("Failed to delete session from Redis: %v", err)
	}
}

// PurgeExpired is a no-op: Redis evicts TTL keys on its own.
func (st *RedisStore) PurgeExpired() {}

func (st *RedisStore) Close() error {
	st.cancel()
	return st.client.Close()
}
