// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package encrypt

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/apex/log"
)

// DefaultGroup is the group used when none is named.
const DefaultGroup = "default"

// DefaultType is the engine used when a group has no type.
const DefaultType = TypeOpenSSL

// Factory builds an engine from a group's config mapping.
type Factory func(cfg map[string]any) (Engine, error)

var (
	enginesMu sync.RWMutex
	engines   = map[string]Factory{
		TypeOpenSSL: func(cfg map[string]any) (Engine, error) { return NewOpenSSL(cfg) },
		TypeSodium:  func(cfg map[string]any) (Engine, error) { return NewSodium(cfg) },
		TypeChaCha:  func(cfg map[string]any) (Engine, error) { return NewChaCha(cfg) },
	}
)

// RegisterEngine makes an engine available by type name.
func RegisterEngine(name string, factory Factory) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[name] = factory
}

// Engines returns the registered engine type names, sorted.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	names := make([]string, 0, len(engines))
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewEngine builds the engine named by cfg's type.
func NewEngine(cfg map[string]any) (Engine, error) {
	typ, _ := cfg[ConfigType].(string)
	if typ == "" {
		typ = DefaultType
	}
	enginesMu.RLock()
	factory, ok := engines[typ]
	enginesMu.RUnlock()
	if !ok {
		return nil, &ConfigError{Message: fmt.Sprintf("Unknown encryption engine type: %s", typ)}
	}
	return factory(cfg)
}

// Encrypter pairs an engine with IV generation so callers deal only in
// plaintext and ciphertext strings.
type Encrypter struct {
	Group  string
	Engine Engine
}

// New wraps engine.
func New(engine Engine) *Encrypter {
	return &Encrypter{Engine: engine}
}

// Encode encrypts data under a fresh IV.
func (e *Encrypter) Encode(data string) (string, error) {
	iv, err := e.Engine.CreateIV()
	if err != nil {
		return "", err
	}
	return e.Engine.Encrypt(data, iv)
}

// Decode decrypts a value produced by Encode.
func (e *Encrypter) Decode(ciphertext string) (string, error) {
	return e.Engine.Decrypt(ciphertext)
}

// Source supplies group sections. config.Type satisfies it.
type Source interface {
	Map(key string) (map[string]any, error)
}

// Registry hands out one Encrypter per encrypt group.
type Registry struct {
	Default string

	mu        sync.Mutex
	source    Source
	instances map[string]*Encrypter
}

// NewRegistry returns a registry reading encrypt.<group> sections from
// source.
func NewRegistry(source Source) *Registry {
	return &Registry{
		Default:   DefaultGroup,
		source:    source,
		instances: map[string]*Encrypter{},
	}
}

// Instance returns the Encrypter for group, building it on first use.
func (r *Registry) Instance(_ context.Context, group string) (*Encrypter, error) {
	if group == "" {
		group = r.Default
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.instances[group]; ok {
		return e, nil
	}

	if r.source == nil {
		return nil, &ConfigError{Message: "Failed to load encryption group: " + group}
	}
	cfg, err := r.source.Map("encrypt." + group)
	if err != nil {
		return nil, &ConfigError{Message: "Failed to load encryption group: " + group}
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	log.Debugf("encrypt group %s ready", group)
	e := &Encrypter{Group: group, Engine: engine}
	r.instances[group] = e
	return e, nil
}
