// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/cache"
	"github.com/staranto/k7ctl/internal/config"
	"github.com/staranto/k7ctl/internal/encrypt"
	"github.com/staranto/k7ctl/internal/meta"
	"github.com/staranto/k7ctl/internal/minion"
	"github.com/staranto/k7ctl/internal/tasks"
	"github.com/staranto/k7ctl/internal/version"
)

// Binary is the name the CLI is invoked as.
const Binary = "k7ctl"

// InitApp loads config, builds the cache and encrypt registries and returns
// the root command with one subcommand per task.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	cfg, err := config.Load()
	if err != nil {
		// An explicit K7_CFG that cannot be read is fatal. A missing default
		// config just means every group fails to load.
		if p, ok := os.LookupEnv("K7_CFG"); ok && p != "" {
			return nil, err
		}
		log.WithError(err).Debug("no config file loaded")
		cfg = config.Type{Data: map[string]any{}}
	}

	taskDir := os.Getenv("K7_TASK_DIR")
	if taskDir == "" {
		taskDir, _ = cfg.String("minion.task_dir", "")
	}

	m := meta.Meta{
		Args:       args,
		Config:     cfg,
		Context:    ctx,
		Caches:     cache.NewRegistry(&cfg),
		Encrypters: encrypt.NewRegistry(&cfg),
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		TaskDir:    taskDir,
	}

	reg, err := NewTaskRegistry(taskDir)
	if err != nil {
		return nil, err
	}
	return NewRootCommand(m, reg), nil
}

// NewTaskRegistry returns the built-in tasks plus any scripts below taskDir.
// Scripts never shadow built-ins.
func NewTaskRegistry(taskDir string) (*minion.Registry, error) {
	reg := minion.NewRegistry(tasks.Builtins()...)
	minion.NewHelp(Binary, reg)

	scripts, err := minion.Discover(taskDir)
	if err != nil {
		return nil, err
	}
	for _, s := range scripts {
		if err := reg.Register(s); err != nil {
			log.WithError(err).Warnf("skipping script task %s", s.Name())
		}
	}
	return reg, nil
}

// NewRootCommand wires every task in reg under the root command. With no
// task the help task runs.
func NewRootCommand(m meta.Meta, reg *minion.Registry) *cli.Command {
	help, _ := reg.Lookup("help")

	app := &cli.Command{
		Name:  Binary,
		Usage: "KO7 cache, encrypt and task runner",
		Flags: []cli.Flag{versionFlag},
		// The help task replaces cli's own help command.
		HideHelpCommand: true,
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("version") {
				_, err := fmt.Fprintln(c.Root().Writer, version.Version)
				return err
			}
			if c.NArg() > 0 {
				return fmt.Errorf("task %s not found", c.Args().First())
			}
			return help.Execute(ctx, m, c)
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if m.Caches == nil {
				return nil
			}
			return m.Caches.Close()
		},
	}

	for _, t := range reg.Tasks() {
		app.Commands = append(app.Commands, (&TaskCommandBuilder{
			Binary: Binary,
			Task:   t,
			Meta:   m,
		}).Build())
	}
	app.Commands = append(app.Commands, CompletionCommandBuilder(Binary, reg))

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}
