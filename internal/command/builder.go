// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/meta"
	"github.com/staranto/k7ctl/internal/minion"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// TaskCommandBuilder turns a minion task into a subcommand.
type TaskCommandBuilder struct {
	Binary string
	Task   minion.Task
	Meta   meta.Meta
}

// Build returns a configured cli.Command from the builder. Flags gain config
// file fallbacks under tasks.<task>.<flag> and tasks.<flag>.
func (tcb *TaskCommandBuilder) Build() *cli.Command {
	name := tcb.Task.Name()
	cmd := &cli.Command{
		Name:      name,
		Usage:     tcb.Task.Description(),
		UsageText: fmt.Sprintf("%s %s [options] [args]", tcb.Binary, name),
		Metadata: map[string]any{
			"meta": tcb.Meta,
		},
		Flags: WithConfigSources(name, tcb.Meta.Config.Source, tcb.Task.Flags()),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			m := GetMeta(c)
			log.Debugf("Executing task %s with %v", name, c.Args().Slice())
			return tcb.Task.Execute(ctx, m, c)
		},
	}

	if pt, ok := tcb.Task.(minion.PassThrough); ok && pt.PassThrough() {
		cmd.SkipFlagParsing = true
		cmd.UsageText = fmt.Sprintf("%s %s [args]", tcb.Binary, name)
	}
	return cmd
}
