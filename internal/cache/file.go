// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
)

const fileExt = ".cache"

func init() {
	RegisterDriver("file", func(_ context.Context, cfg map[string]any) (Driver, error) {
		return NewFile(cfg)
	})
}

// File stores each entry in its own file below cache_dir. The first line of
// a file is the expiry as a unix timestamp (0 = never); the rest is data.
type File struct {
	Base
	dir string
}

// Dir resolves the default cache directory.
// Precedence:
//  1. K7_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/k7
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("K7_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "k7"), true
	}
	return "", false
}

// NewFile creates a file driver, creating cache_dir when missing.
func NewFile(cfg map[string]any) (*File, error) {
	f := &File{}
	f.bind(f, cfg)

	dir := f.stringValue("cache_dir", "")
	if dir == "" {
		d, ok := Dir()
		if !ok {
			return nil, &Error{Message: "Unable to resolve a cache directory for the file driver"}
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, &Error{Message: "Could not create cache directory " + dir, Err: err}
	}
	f.dir = dir
	return f, nil
}

// CacheDir returns the directory the driver writes below.
func (f *File) CacheDir() string {
	return f.dir
}

// path returns the entry file for id, fanned out by the first two characters
// of its name.
func (f *File) path(id string) string {
	name := f.SanitizeID(id) + fileExt
	return filepath.Join(f.dir, name[:2], name)
}

func (f *File) Get(_ context.Context, id string) ([]byte, bool, error) {
	p := f.path(id)
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache file %s: %w", p, err)
	}

	expires, data, ok := splitEntry(b)
	if !ok || f.expired(expires) {
		f.remove(p)
		return nil, false, nil
	}
	return data, true, nil
}

func (f *File) Set(_ context.Context, id string, data []byte, lifetime time.Duration) error {
	p := f.path(id)
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial entry.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%d\n", f.expiresAt(lifetime))
	_, _ = w.Write(data)
	if err := w.Flush(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil { //nolint:mnd
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, id string) error {
	if err := os.Remove(f.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteAll empties cache_dir but keeps the directory itself.
func (f *File) DeleteAll(_ context.Context) error {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(f.dir, e.Name())); err != nil {
			return fmt.Errorf("failed to delete cache entries: %w", err)
		}
	}
	return nil
}

// GarbageCollect removes expired and unreadable entry files.
func (f *File) GarbageCollect(ctx context.Context) (GCStats, error) {
	var stats GCStats
	err := filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.WithError(err).Warnf("skipping %s", path)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
			return nil
		}
		expires, ok := readExpiry(path)
		if ok && !f.expired(expires) {
			return nil
		}
		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		if f.remove(path) {
			stats.Removed++
			stats.Bytes += size
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to collect garbage: %w", err)
	}
	return stats, nil
}

func (f *File) remove(path string) bool {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
		}
		return false
	}
	log.Debugf("removed cache file %s", path)
	return true
}

func splitEntry(b []byte) (int64, []byte, bool) {
	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return 0, nil, false
	}
	expires, err := strconv.ParseInt(string(b[:idx]), 10, 64)
	if err != nil {
		return 0, nil, false
	}
	return expires, b[idx+1:], true
}

func readExpiry(path string) (int64, bool) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer fh.Close() //nolint:errcheck

	line, err := bufio.NewReader(fh).ReadString('\n')
	if err != nil {
		return 0, false
	}
	expires, err := strconv.ParseInt(strings.TrimSuffix(line, "\n"), 10, 64)
	if err != nil {
		return 0, false
	}
	return expires, true
}
