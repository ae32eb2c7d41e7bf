package session

import (
	"log"

	"gridlink/internal/config"
)

// NewStore selects the session backend: Redis when REDIS_HOST is
// configured and reachable, in-memory otherwise.
func NewStore(cfg config.RedisConfig) Store {
	if cfg.Host != "" {
		store, err := NewRedisStore(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		if err != nil {
			log.Printf("⚠️  Redis connection failed: %v", err)
			log.Println("💾 Falling back to in-memory session store")
			return NewMemoryStore()
		}
		log.Printf("💾 Using Redis session store: %s:%s", cfg.Host, cfg.Port)
		return store
	}

	log.Println("💾 Using in-memory session store")
	return NewMemoryStore()
}
