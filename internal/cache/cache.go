// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"sync"
	"time"

	"github.com/staranto/k7ctl/internal/config"
)

const (
	// DefaultExpire applies when neither the caller nor the group's
	// default_expire says otherwise.
	DefaultExpire = 3600 * time.Second

	// NoExpiration stores an entry until it is deleted.
	NoExpiration time.Duration = -1
)

// Driver is a cache backend bound to one configuration group.
type Driver interface {
	// Get returns the data stored under id. A miss is (nil, false, nil).
	Get(ctx context.Context, id string) ([]byte, bool, error)

	// Set stores data under id. A zero lifetime uses the group's
	// default_expire; a negative one never expires.
	Set(ctx context.Context, id string, data []byte, lifetime time.Duration) error

	// Delete removes id. Deleting a missing entry is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every entry held by the driver.
	DeleteAll(ctx context.Context) error

	// Config returns a copy of the whole config mapping.
	Config() map[string]any

	// ConfigValue returns the value for key; ok is false when unset.
	ConfigValue(key string) (value any, ok bool)

	// SetConfig stores key=value and returns the driver for chaining.
	SetConfig(key string, value any) Driver

	// ReplaceConfig swaps in the whole mapping and returns the driver.
	ReplaceConfig(cfg map[string]any) Driver

	// SanitizeID maps a caller id onto the storage id.
	SanitizeID(id string) string

	// Clone always fails; a group has exactly one driver.
	Clone() (Driver, error)
}

// GarbageCollector is implemented by drivers that keep expired entries
// around until swept.
type GarbageCollector interface {
	GarbageCollect(ctx context.Context) (GCStats, error)
}

// GCStats reports what a garbage collection pass removed.
type GCStats struct {
	Removed int
	Bytes   int64
}

// Arithmetic is implemented by drivers that can adjust integer entries in
// place.
type Arithmetic interface {
	Increment(ctx context.Context, id string, step int64) (int64, error)
	Decrement(ctx context.Context, id string, step int64) (int64, error)
}

// Base carries the state every driver shares: the config mapping and the
// id prefix. Drivers embed it and call bind from their constructor.
type Base struct {
	mu     sync.RWMutex
	config map[string]any
	prefix string
	self   Driver
	now    func() time.Time
}

func (b *Base) bind(self Driver, cfg map[string]any) {
	b.self = self
	b.config = make(map[string]any, len(cfg))
	for k, v := range cfg {
		b.config[k] = v
	}
	b.now = time.Now
}

func (b *Base) Config() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.config))
	for k, v := range b.config {
		out[k] = v
	}
	return out
}

func (b *Base) ConfigValue(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.config[key]
	return v, ok
}

func (b *Base) SetConfig(key string, value any) Driver {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.config == nil {
		b.config = map[string]any{}
	}
	b.config[key] = value
	return b.self
}

func (b *Base) ReplaceConfig(cfg map[string]any) Driver {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.config = make(map[string]any, len(cfg))
	for k, v := range cfg {
		b.config[k] = v
	}
	return b.self
}

// SetPrefix sets the fallback id prefix used when the group config has no
// prefix of its own. The registry passes cache.prefix through here.
func (b *Base) SetPrefix(prefix string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prefix = prefix
}

// SanitizeID returns prefix + sha1(id) in hex.
func (b *Base) SanitizeID(id string) string {
	b.mu.RLock()
	prefix := b.prefix
	b.mu.RUnlock()
	if p, ok := b.ConfigValue("prefix"); ok {
		if s, ok := p.(string); ok {
			prefix = s
		}
	}
	sum := sha1.Sum([]byte(id)) //nolint:gosec
	return prefix + hex.EncodeToString(sum[:])
}

func (b *Base) Clone() (Driver, error) {
	return nil, ErrCloneForbidden
}

// lifetime resolves a caller lifetime against the group default.
func (b *Base) lifetime(d time.Duration) time.Duration {
	if d < 0 {
		return NoExpiration
	}
	if d > 0 {
		return d
	}
	if v, ok := b.ConfigValue("default_expire"); ok {
		if secs, err := config.ToInt(v); err == nil {
			if secs <= 0 {
				return NoExpiration
			}
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultExpire
}

// expiresAt turns a lifetime into a unix timestamp; 0 means never.
func (b *Base) expiresAt(d time.Duration) int64 {
	d = b.lifetime(d)
	if d == NoExpiration {
		return 0
	}
	return b.clock().Add(d).Unix()
}

func (b *Base) expired(expires int64) bool {
	return expires != 0 && b.clock().Unix() >= expires
}

func (b *Base) clock() time.Time {
	if b.now == nil {
		return time.Now()
	}
	return b.now()
}

func (b *Base) stringValue(key, def string) string {
	if v, ok := b.ConfigValue(key); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func (b *Base) intValue(key string, def int) int {
	if v, ok := b.ConfigValue(key); ok {
		if i, err := config.ToInt(v); err == nil {
			return i
		}
	}
	return def
}

func (b *Base) boolValue(key string, def bool) bool {
	if v, ok := b.ConfigValue(key); ok {
		if bv, ok := v.(bool); ok {
			return bv
		}
	}
	return def
}
