// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package minion

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/meta"
)

// Help lists every task in its registry.
type Help struct {
	Binary   string
	registry *Registry
}

// NewHelp returns the help task and registers it with r.
func NewHelp(binary string, r *Registry) *Help {
	h := &Help{Binary: binary, registry: r}
	if err := r.Register(h); err != nil {
		panic(err)
	}
	return h
}

func (h *Help) Name() string {
	return "help"
}

func (h *Help) Description() string {
	return "list the available tasks"
}

func (h *Help) Flags() []cli.Flag {
	return nil
}

// Execute renders help/list to the task's stdout.
func (h *Help) Execute(_ context.Context, m meta.Meta, _ *cli.Command) error {
	tasks := h.registry.Tasks()
	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, TaskRow{Name: t.Name(), Description: t.Description()})
	}

	view, err := Render("help/list", struct {
		Binary string
		Tasks  []TaskRow
	}{h.Binary, rows})
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if m.Stdout != nil {
		w = m.Stdout
	}
	_, err = fmt.Fprint(w, view)
	return err
}
