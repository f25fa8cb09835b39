package queue

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"bitbetty/internal/config"
)

// FromConfig builds the backend named by cfg.Backend. The returned close func
// releases the backend's connections and is never nil.
func FromConfig(cfg config.QueueConfig, rcfg config.RedisConfig) (Queue, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemoryQueue(), func() error { return nil }, nil
	case "redis":
		if strings.TrimSpace(rcfg.Addr) == "" {
			return nil, nil, fmt.Errorf("queue backend redis requires redis.addr")
		}
		q := NewRedisQueue(&redis.Options{
			Addr:     rcfg.Addr,
			Password: rcfg.Password,
			DB:       rcfg.DB,
		}, cfg.Name)
		return q, q.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
	}
}
