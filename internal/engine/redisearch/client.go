// Package redisearch implements the engine capability interface over
// RediSearch FT.SEARCH via rueidis.
package redisearch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Config holds connection parameters for the engine node.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store wraps the rueidis client consumed by the adapter.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the engine node.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls the engine until it answers or the timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("engine not ready after %s: %w", timeout, lastErr)
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
