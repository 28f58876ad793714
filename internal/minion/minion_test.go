// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package minion

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/meta"
)

type stubTask struct {
	name string
	desc string
}

func (s stubTask) Name() string        { return s.name }
func (s stubTask) Description() string { return s.desc }
func (s stubTask) Flags() []cli.Flag   { return nil }
func (s stubTask) Execute(context.Context, meta.Meta, *cli.Command) error {
	return nil
}

func TestCompileTaskList(t *testing.T) {
	root := filepath.Join("tmp", "tasks")
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "empty",
			paths: nil,
			want:  nil,
		},
		{
			name: "nested",
			paths: []string{
				filepath.Join(root, "cache", "warm.sh"),
				filepath.Join(root, "db", "migrate", "Up.py"),
				filepath.Join(root, "hello"),
			},
			want: []string{"cache:warm", "db:migrate:up", "hello"},
		},
		{
			name: "hidden and outside",
			paths: []string{
				filepath.Join(root, ".git", "config"),
				filepath.Join(root, "cache", ".secret.sh"),
				filepath.Join("tmp", "other", "x.sh"),
			},
			want: nil,
		},
		{
			name: "duplicates",
			paths: []string{
				filepath.Join(root, "cache", "warm.sh"),
				filepath.Join(root, "cache", "warm.py"),
			},
			want: []string{"cache:warm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompileTaskList(tt.paths, root))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(stubTask{name: "b"}, stubTask{name: "a"})

	err := r.Register(stubTask{name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	got, ok := r.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.Name())

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	tasks := r.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].Name())
	assert.Equal(t, "b", tasks[1].Name())
}

func TestHelpListsTasks(t *testing.T) {
	r := NewRegistry(
		stubTask{name: "cache:get", desc: "fetch a cached value"},
		stubTask{name: "encrypt:iv", desc: "print a fresh IV"},
	)
	h := NewHelp("k7ctl", r)

	var out bytes.Buffer
	require.NoError(t, h.Execute(context.Background(), meta.Meta{Stdout: &out}, nil))

	s := out.String()
	assert.Contains(t, s, "k7ctl task:name")
	assert.Contains(t, s, "Available tasks:")
	assert.Contains(t, s, "cache:get")
	assert.Contains(t, s, "fetch a cached value")
	assert.Contains(t, s, "encrypt:iv")
	assert.Contains(t, s, "help")
	assert.NotContains(t, s, "none")
}

func TestRenderWithoutTasks(t *testing.T) {
	s, err := Render("help/list", struct {
		Binary string
		Tasks  []TaskRow
	}{Binary: "k7ctl"})
	require.NoError(t, err)
	assert.Contains(t, s, "none")
}

func TestRenderMissingView(t *testing.T) {
	_, err := Render("help/nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load view help/nope")
}

func TestDiscover(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not meaningful on windows")
	}

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cache"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache", "warm.sh"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.sh"), []byte("#!/bin/sh\n"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Deploy.SH"), []byte("#!/bin/sh\n"), 0o755))

	tasks, err := Discover(dir)
	require.NoError(t, err)
	var names []string
	for _, task := range tasks {
		names = append(names, task.Name())
	}
	assert.ElementsMatch(t, []string{"cache:warm", "deploy"}, names)

	files, err := ListFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, CompileTaskList(files, dir), names)

	tasks, err = Discover(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = Discover("")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestScriptTaskExecute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "echo.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$K7_TASK $*\"\n"), 0o755))

	tasks, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]

	var out bytes.Buffer
	m := meta.Meta{Stdout: &out}
	cmd := &cli.Command{
		Name:            task.Name(),
		SkipFlagParsing: true,
		Action: func(ctx context.Context, c *cli.Command) error {
			return task.Execute(ctx, m, c)
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"echo", "one", "--two"}))
	assert.Equal(t, "echo one --two\n", out.String())
}
