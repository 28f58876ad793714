// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for k7ctl. It turns every
// registered minion task into a subcommand and wires flags, validators,
// config fallbacks and shell completion.
package command
