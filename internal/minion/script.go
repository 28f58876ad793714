// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package minion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/meta"
)

// ScriptTask runs an executable found in the task directory.
type ScriptTask struct {
	name string
	Path string
}

func (s *ScriptTask) Name() string {
	return s.name
}

func (s *ScriptTask) Description() string {
	return "run " + s.Path
}

func (s *ScriptTask) Flags() []cli.Flag {
	return nil
}

func (s *ScriptTask) PassThrough() bool {
	return true
}

// Execute runs the script with the task's arguments. K7_TASK carries the
// task name into the script's environment.
func (s *ScriptTask) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	c := exec.CommandContext(ctx, s.Path, cmd.Args().Slice()...)
	c.Stdin = m.Stdin
	c.Stdout = m.Stdout
	c.Stderr = os.Stderr
	c.Env = append(os.Environ(), "K7_TASK="+s.name)
	log.Debugf("running script task %s: %s %v", s.name, s.Path, cmd.Args().Slice())
	if err := c.Run(); err != nil {
		return fmt.Errorf("task %s failed: %w", s.name, err)
	}
	return nil
}

// ListFiles returns every regular executable file below dir. A missing dir
// yields no files.
func ListFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode().Perm()&0o111 == 0 {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks in %s: %w", dir, err)
	}
	return files, nil
}

// Discover builds a ScriptTask for each executable below dir, named the way
// CompileTaskList names it.
func Discover(dir string) ([]Task, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	log.Debugf("scripts in %s: %v", dir, CompileTaskList(files, dir))

	var tasks []Task
	for _, f := range files {
		names := CompileTaskList([]string{f}, dir)
		if len(names) != 1 {
			continue
		}
		tasks = append(tasks, &ScriptTask{name: names[0], Path: f})
	}
	return tasks, nil
}
