// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package minion

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/meta"
)

// Task is a unit of work runnable from the command line as
// `k7ctl group:name [flags]`.
type Task interface {
	Name() string
	Description() string
	Flags() []cli.Flag
	Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error
}

// PassThrough is implemented by tasks that want their arguments untouched
// by flag parsing.
type PassThrough interface {
	PassThrough() bool
}

// Registry holds tasks by name.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewRegistry returns a registry holding tasks. Duplicate names panic since
// they can only come from programming errors.
func NewRegistry(tasks ...Task) *Registry {
	r := &Registry{tasks: map[string]Task{}}
	for _, t := range tasks {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds t. A name already taken is an error.
func (r *Registry) Register(t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.Name()]; ok {
		return fmt.Errorf("task %s is already registered", t.Name())
	}
	r.tasks[t.Name()] = t
	return nil
}

// Lookup returns the task called name.
func (r *Registry) Lookup(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// Tasks returns every task sorted by name.
func (r *Registry) Tasks() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// CompileTaskList turns file paths below root into task names:
// root/cache/warm.sh becomes cache:warm. Hidden files are skipped and the
// result is sorted and free of duplicates.
func CompileTaskList(paths []string, root string) []string {
	seen := map[string]bool{}
	var names []string
	for _, p := range paths {
		if name, ok := taskName(p, root); ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func taskName(path, root string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	last := parts[len(parts)-1]
	parts[len(parts)-1] = strings.TrimSuffix(last, filepath.Ext(last))
	if parts[len(parts)-1] == "" {
		return "", false
	}
	return strings.ToLower(strings.Join(parts, ":")), true
}
