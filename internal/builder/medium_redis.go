package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisOptions configures RedisMedium
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Timeout  time.Duration
}

// RedisMedium keeps the draft record under a single redis key
type RedisMedium struct {
	rdb     *goredis.Client
	key     string
	timeout time.Duration
}

// NewRedisMedium connects and pings redis before returning
func NewRedisMedium(opts RedisOptions) (*RedisMedium, error) {
	if opts.Key == "" {
		return nil, fmt.Errorf("redis draft: key required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisMedium{rdb: rdb, key: opts.Key, timeout: opts.Timeout}, nil
}

func (m *RedisMedium) Read() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	data, err := m.rdb.Get(ctx, m.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNoRecord
	}
	return data, err
}

func (m *RedisMedium) Write(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.rdb.Set(ctx, m.key, data, 0).Err()
}

func (m *RedisMedium) Remove() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.rdb.Del(ctx, m.key).Err()
}

func (m *RedisMedium) Close() error {
	return m.rdb.Close()
}
