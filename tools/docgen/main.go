// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// Doc generator:
// - Reads docs/tasks/*.md as canonical task docs (cache-get.md documents cache:get)
// - Generates:
//   - docs/man/share/man1/k7ctl-<task>.1 via md2man
//   - docs/tldr/k7ctl-<task>.md from the Short description and Quick examples

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	g := generator{
		tasksDir:      filepath.Join(repoRoot, "docs", "tasks"),
		manOutDir:     filepath.Join(repoRoot, "docs", "man", "share", "man1"),
		tldrOutDir:    filepath.Join(repoRoot, "docs", "tldr"),
		onlyIfChanged: writeOnlyIfChanged,
	}

	n, err := g.run()
	if err != nil {
		fatalf("%v", err)
	}
	if n == 0 {
		fatalf("no task markdown found under %s", g.tasksDir)
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}
