// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/apex/log"
)

// DefaultGroup is used when neither the caller nor cache.default names one.
const DefaultGroup = "file"

// Factory builds a driver from a group's config mapping.
type Factory func(ctx context.Context, cfg map[string]any) (Driver, error)

var (
	driversMu sync.RWMutex
	drivers   = map[string]Factory{}
)

// RegisterDriver makes a driver available by name. Built-in drivers call
// this from init().
func RegisterDriver(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookupDriver(name string) (Factory, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	f, ok := drivers[name]
	return f, ok
}

// Source supplies group sections. config.Type satisfies it.
type Source interface {
	Map(key string) (map[string]any, error)
	String(key string, defaultValue ...string) (string, error)
}

// Registry hands out one driver per cache group.
type Registry struct {
	Default string
	Prefix  string

	mu        sync.Mutex
	source    Source
	instances map[string]Driver
}

// NewRegistry returns a registry reading groups from source. cache.default
// and cache.prefix are read once here. A nil source yields a registry in
// which every group fails to load.
func NewRegistry(source Source) *Registry {
	r := &Registry{
		Default:   DefaultGroup,
		source:    source,
		instances: map[string]Driver{},
	}
	if source != nil {
		if def, err := source.String("cache.default", DefaultGroup); err == nil && def != "" {
			r.Default = def
		}
		r.Prefix, _ = source.String("cache.prefix", "")
	}
	return r
}

// Instance returns the driver for group, creating it on first use. An empty
// group means r.Default.
func (r *Registry) Instance(ctx context.Context, group string) (Driver, error) {
	if group == "" {
		group = r.Default
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.instances[group]; ok {
		return d, nil
	}

	cfg, err := r.groupConfig(group)
	if err != nil {
		return nil, &Error{Message: "Failed to load K7 Cache group: " + group, Err: err}
	}

	name := driverName(cfg)
	factory, ok := lookupDriver(name)
	if !ok {
		return nil, &Error{
			Message: "Failed to load K7 Cache group: " + group,
			Err:     fmt.Errorf("unknown cache driver %q", name),
		}
	}

	d, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver for cache group %s: %w", name, group, err)
	}
	if p, ok := d.(interface{ SetPrefix(string) }); ok {
		p.SetPrefix(r.Prefix)
	}

	log.Debugf("cache group %s using %s driver", group, name)
	r.instances[group] = d
	return d, nil
}

// Groups returns the names of the groups instantiated so far, sorted.
func (r *Registry) Groups() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.instances))
	for n := range r.instances {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close releases drivers that hold resources and forgets every instance.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for group, d := range r.instances {
		if c, ok := d.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("cache group %s: %w", group, err))
			}
		}
	}
	r.instances = map[string]Driver{}
	return errors.Join(errs...)
}

func (r *Registry) groupConfig(group string) (map[string]any, error) {
	if r.source == nil {
		return nil, errors.New("no configuration loaded")
	}
	return r.source.Map("cache." + group)
}

// driverName accepts both "driver" and "type" as the selector key.
func driverName(cfg map[string]any) string {
	for _, k := range []string{"driver", "type"} {
		if s, ok := cfg[k].(string); ok && s != "" {
			return s
		}
	}
	return DefaultGroup
}
