// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/k7ctl/internal/cache"
	"github.com/staranto/k7ctl/internal/config"
	"github.com/staranto/k7ctl/internal/encrypt"
	"github.com/staranto/k7ctl/internal/meta"
	"github.com/staranto/k7ctl/internal/version"
)

const testConfig = `cache:
  default: files
  files:
    driver: file
    cache_dir: %s
  mem:
    driver: memory
tasks:
  cache:config:
    output: yaml
`

func testMeta(t *testing.T) (meta.Meta, *bytes.Buffer) {
	t.Helper()
	t.Setenv("K7_CACHE_GROUP", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "k7.yaml")
	body := fmt.Sprintf(testConfig, filepath.Join(dir, "cache"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	var out bytes.Buffer
	return meta.Meta{
		Config:     cfg,
		Caches:     cache.NewRegistry(&cfg),
		Encrypters: encrypt.NewRegistry(&cfg),
		Stdin:      strings.NewReader(""),
		Stdout:     &out,
	}, &out
}

func TestNewTaskRegistry(t *testing.T) {
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)

	var names []string
	for _, task := range reg.Tasks() {
		names = append(names, task.Name())
	}
	assert.Equal(t, []string{
		"cache:config", "cache:delete", "cache:flush", "cache:gc", "cache:get",
		"cache:set", "encrypt:decode", "encrypt:encode", "encrypt:iv", "help",
	}, names)
}

func TestNewTaskRegistryScripts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not meaningful on windows")
	}

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cache"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache", "get.sh"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache", "warm.sh"), []byte("#!/bin/sh\n"), 0o755))

	reg, err := NewTaskRegistry(dir)
	require.NoError(t, err)

	warm, ok := reg.Lookup("cache:warm")
	require.True(t, ok)
	assert.Contains(t, warm.Description(), "warm.sh")

	get, ok := reg.Lookup("cache:get")
	require.True(t, ok)
	assert.NotContains(t, get.Description(), "get.sh")
}

func TestRootCommandDefaultsToHelp(t *testing.T) {
	m, out := testMeta(t)
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)

	app := NewRootCommand(m, reg)
	require.NoError(t, app.Run(context.Background(), []string{Binary}))
	assert.Contains(t, out.String(), "Available tasks:")
	assert.Contains(t, out.String(), "cache:get")
	assert.Contains(t, out.String(), "encrypt:decode")
}

func TestRootCommandVersion(t *testing.T) {
	m, _ := testMeta(t)
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)

	var buf bytes.Buffer
	app := NewRootCommand(m, reg)
	app.Writer = &buf
	require.NoError(t, app.Run(context.Background(), []string{Binary, "--version"}))
	assert.Equal(t, version.Version+"\n", buf.String())
}

func TestRootCommandRunsTasks(t *testing.T) {
	m, out := testMeta(t)
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, NewRootCommand(m, reg).Run(ctx, []string{Binary, "cache:set", "k", "v"}))
	require.NoError(t, NewRootCommand(m, reg).Run(ctx, []string{Binary, "cache:get", "k"}))
	assert.Equal(t, "v", out.String())
}

func TestRootCommandConfigFallback(t *testing.T) {
	m, out := testMeta(t)
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)

	require.NoError(t, NewRootCommand(m, reg).Run(context.Background(), []string{Binary, "cache:config", "--group", "mem"}))
	assert.Equal(t, "driver: memory\n", out.String())
}

func TestRootCommandBadOutput(t *testing.T) {
	m, _ := testMeta(t)
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)

	err = NewRootCommand(m, reg).Run(context.Background(), []string{Binary, "cache:config", "--output", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestRootCommandUnknownGroup(t *testing.T) {
	m, _ := testMeta(t)
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)

	err = NewRootCommand(m, reg).Run(context.Background(), []string{Binary, "cache:flush", "--group", "1010"})
	require.Error(t, err)
	assert.Equal(t, "Failed to load K7 Cache group: 1010", err.Error())
}

func TestGetMeta(t *testing.T) {
	assert.Equal(t, meta.Meta{}, GetMeta(nil))

	m, _ := testMeta(t)
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)
	app := NewRootCommand(m, reg)
	for _, c := range app.Commands {
		if c.Name == "completion" {
			continue
		}
		assert.Same(t, m.Caches, GetMeta(c).Caches, c.Name)
	}
}

func TestWriteCompletion(t *testing.T) {
	reg, err := NewTaskRegistry("")
	require.NoError(t, err)

	var bash bytes.Buffer
	require.NoError(t, WriteCompletion(&bash, "bash", reg))
	assert.Contains(t, bash.String(), "complete -F _k7ctl k7ctl")
	assert.Contains(t, bash.String(), "cache:get)")
	assert.Contains(t, bash.String(), "--group -g")
	assert.Contains(t, bash.String(), "text json raw yaml")

	var zsh bytes.Buffer
	require.NoError(t, WriteCompletion(&zsh, "zsh", reg))
	assert.Contains(t, zsh.String(), `'cache\:get:print the value cached under an id'`)

	assert.Error(t, WriteCompletion(&bytes.Buffer{}, "fish", reg))
}
