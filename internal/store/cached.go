package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached keeps recently used values in memory in front of another Backend.
// Writes land in the cache before the backend is tried, so a session keeps
// its latest state even when the backend rejects the write.
type Cached struct {
	next  Backend
	cache *lru.Cache[string, []byte]
}

func NewCached(next Backend, size int) (*Cached, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create preference cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.cache.Get(key); ok {
		return append([]byte(nil), v...), nil
	}

	v, err := c.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]byte(nil), v...))
	return v, nil
}

func (c *Cached) Set(ctx context.Context, key string, value []byte) error {
	c.cache.Add(key, append([]byte(nil), value...))
	return c.next.Set(ctx, key, value)
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	c.cache.Remove(key)
	return c.next.Delete(ctx, key)
}

func (c *Cached) Ping(ctx context.Context) error {
	if p, ok := c.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
