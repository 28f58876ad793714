// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"errors"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/meta"
	"github.com/staranto/k7ctl/internal/minion"
)

// ErrUsage is returned when a task is missing a required argument.
var ErrUsage = errors.New("missing required argument")

// Builtins returns every built-in task except help.
func Builtins() []minion.Task {
	return []minion.Task{
		&CacheGet{},
		&CacheSet{},
		&CacheDelete{},
		&CacheFlush{},
		&CacheGC{},
		&CacheConfig{},
		&EncryptIV{},
		&EncryptEncode{},
		&EncryptDecode{},
	}
}

func cacheGroupFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "group",
		Aliases: []string{"g"},
		Usage:   "cache group to use. Defaults to cache.default",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("K7_CACHE_GROUP"),
		),
	}
}

func encryptGroupFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "group",
		Aliases: []string{"g"},
		Usage:   "encrypt group to use",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("K7_ENCRYPT_GROUP"),
		),
	}
}

func stdout(m meta.Meta) io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

func stdin(m meta.Meta) io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}
