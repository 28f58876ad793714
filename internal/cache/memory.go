// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval is how often the memory driver sweeps expired
// entries when cleanup_interval is not configured.
const DefaultCleanupInterval = 10 * time.Minute

func init() {
	RegisterDriver("memory", func(_ context.Context, cfg map[string]any) (Driver, error) {
		return NewMemory(cfg), nil
	})
}

// Memory keeps entries in process memory. Entries vanish with the process.
type Memory struct {
	Base
	arith sync.Mutex
	store *gocache.Cache
}

// NewMemory creates a memory driver. cleanup_interval is in seconds.
func NewMemory(cfg map[string]any) *Memory {
	m := &Memory{}
	m.bind(m, cfg)

	cleanup := DefaultCleanupInterval
	if secs := m.intValue("cleanup_interval", 0); secs > 0 {
		cleanup = time.Duration(secs) * time.Second
	}
	m.store = gocache.New(gocache.NoExpiration, cleanup)
	return m
}

func (m *Memory) Get(_ context.Context, id string) ([]byte, bool, error) {
	v, found := m.store.Get(m.SanitizeID(id))
	if !found {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *Memory) Set(_ context.Context, id string, data []byte, lifetime time.Duration) error {
	m.store.Set(m.SanitizeID(id), append([]byte(nil), data...), m.ttl(lifetime))
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.store.Delete(m.SanitizeID(id))
	return nil
}

func (m *Memory) DeleteAll(_ context.Context) error {
	m.store.Flush()
	return nil
}

// Increment adds step to the integer stored under id, keeping its expiry.
func (m *Memory) Increment(_ context.Context, id string, step int64) (int64, error) {
	m.arith.Lock()
	defer m.arith.Unlock()

	key := m.SanitizeID(id)
	v, exp, found := m.store.GetWithExpiration(key)
	if !found {
		return 0, fmt.Errorf("cache entry %s not found", id)
	}
	b, _ := v.([]byte)
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache entry %s is not an integer: %w", id, err)
	}
	n += step

	ttl := gocache.NoExpiration
	if !exp.IsZero() {
		ttl = time.Until(exp)
		if ttl <= 0 {
			return 0, fmt.Errorf("cache entry %s not found", id)
		}
	}
	m.store.Set(key, []byte(strconv.FormatInt(n, 10)), ttl)
	return n, nil
}

func (m *Memory) Decrement(ctx context.Context, id string, step int64) (int64, error) {
	return m.Increment(ctx, id, -step)
}

// ItemCount reports how many entries are held, expired ones included.
func (m *Memory) ItemCount() int {
	return m.store.ItemCount()
}

func (m *Memory) ttl(lifetime time.Duration) time.Duration {
	d := m.lifetime(lifetime)
	if d == NoExpiration {
		return gocache.NoExpiration
	}
	return d
}
