// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/k7ctl/internal/command"
	"github.com/staranto/k7ctl/internal/config"
	mylog "github.com/staranto/k7ctl/internal/log"
	"github.com/staranto/k7ctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	// Short-circuit --version/-v.
	for _, a := range args[1:] {
		if a == "--" {
			break
		}
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	if len(args) > 1 {
		var err error
		if args, err = mangleArguments(args, config.GetStringSlice); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an @set given directly after the task name into
// the argument list stored at tasks.<task>.<set> in the config. Without an
// @set, tasks.<task>.defaults is used when present. Set arguments are
// inserted right after the task name so anything on the command line still
// wins. Any other @ argument is left alone.
func mangleArguments(args []string, lookup func(string) ([]string, error)) ([]string, error) {
	// We know the first two args are going to be the executable and task.
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		return args, nil
	}
	task := args[1]

	// Help is never decorated.
	for _, a := range args[2:] {
		if a == "--" {
			break
		}
		if a == "--help" || a == "-h" {
			return args, nil
		}
	}

	set, named := "defaults", false
	rest := args[2:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "@") && len(rest[0]) > 1 {
		set, named = rest[0][1:], true
		rest = rest[1:]
	}

	setArgs, err := lookup("tasks." + task + "." + set)
	if err != nil {
		if named {
			return nil, fmt.Errorf("argument set %s not found for %s", set, task)
		}
		log.Debugf("no argument set %s for %s", set, task)
	}

	out := append([]string{}, args[:2]...)
	for _, arg := range setArgs {
		out = append(out, strings.Fields(arg)...)
	}
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", set, out)
	return out, nil
}
