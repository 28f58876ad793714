// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/cache"
	"github.com/staranto/k7ctl/internal/meta"
	"github.com/staranto/k7ctl/internal/output"
)

func driver(ctx context.Context, m meta.Meta, cmd *cli.Command) (cache.Driver, error) {
	if m.Caches == nil {
		return nil, fmt.Errorf("no cache registry available")
	}
	return m.Caches.Instance(ctx, cmd.String("group"))
}

// CacheGet prints a cached value.
type CacheGet struct{}

func (*CacheGet) Name() string        { return "cache:get" }
func (*CacheGet) Description() string { return "print the value cached under an id" }

func (*CacheGet) Flags() []cli.Flag {
	return []cli.Flag{
		cacheGroupFlag(),
		&cli.StringFlag{
			Name:    "default",
			Aliases: []string{"d"},
			Usage:   "value to print when nothing is cached",
		},
	}
}

func (*CacheGet) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: id", ErrUsage)
	}

	d, err := driver(ctx, m, cmd)
	if err != nil {
		return err
	}

	data, ok, err := d.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		if !cmd.IsSet("default") {
			return fmt.Errorf("no cached value for %s", id)
		}
		data = []byte(cmd.String("default"))
	}

	_, err = stdout(m).Write(data)
	return err
}

// CacheSet stores a value. With no value argument it reads stdin.
type CacheSet struct{}

func (*CacheSet) Name() string        { return "cache:set" }
func (*CacheSet) Description() string { return "store a value under an id" }

func (*CacheSet) Flags() []cli.Flag {
	return []cli.Flag{
		cacheGroupFlag(),
		&cli.DurationFlag{
			Name:    "lifetime",
			Aliases: []string{"l"},
			Usage:   "entry lifetime. 0 uses the group default, negative never expires",
		},
	}
}

func (*CacheSet) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: id", ErrUsage)
	}

	var data []byte
	if cmd.NArg() > 1 {
		data = []byte(cmd.Args().Get(1))
	} else {
		b, err := io.ReadAll(stdin(m))
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		data = b
	}

	d, err := driver(ctx, m, cmd)
	if err != nil {
		return err
	}
	return d.Set(ctx, id, data, cmd.Duration("lifetime"))
}

// CacheDelete removes one or more ids.
type CacheDelete struct{}

func (*CacheDelete) Name() string        { return "cache:delete" }
func (*CacheDelete) Description() string { return "remove cached ids" }
func (*CacheDelete) Flags() []cli.Flag   { return []cli.Flag{cacheGroupFlag()} }

func (*CacheDelete) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: id", ErrUsage)
	}

	d, err := driver(ctx, m, cmd)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := d.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// CacheFlush empties a group.
type CacheFlush struct{}

func (*CacheFlush) Name() string        { return "cache:flush" }
func (*CacheFlush) Description() string { return "remove every entry in a cache group" }
func (*CacheFlush) Flags() []cli.Flag   { return []cli.Flag{cacheGroupFlag()} }

func (*CacheFlush) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	d, err := driver(ctx, m, cmd)
	if err != nil {
		return err
	}
	return d.DeleteAll(ctx)
}

// CacheGC removes expired entries from groups whose driver supports it.
type CacheGC struct{}

func (*CacheGC) Name() string        { return "cache:gc" }
func (*CacheGC) Description() string { return "remove expired entries from a cache group" }
func (*CacheGC) Flags() []cli.Flag   { return []cli.Flag{cacheGroupFlag()} }

func (*CacheGC) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	d, err := driver(ctx, m, cmd)
	if err != nil {
		return err
	}

	gc, ok := d.(cache.GarbageCollector)
	if !ok {
		return fmt.Errorf("cache group does not support garbage collection")
	}

	stats, err := gc.GarbageCollect(ctx)
	if err != nil {
		return err
	}
	log.Debugf("gc removed %d entries", stats.Removed)
	_, err = fmt.Fprintf(stdout(m), "removed %d expired entries (%s)\n",
		stats.Removed, humanize.Bytes(uint64(stats.Bytes)))
	return err
}

// CacheConfig shows the configuration a group's driver was built from.
type CacheConfig struct{}

func (*CacheConfig) Name() string        { return "cache:config" }
func (*CacheConfig) Description() string { return "show the configuration of a cache group" }

func (*CacheConfig) Flags() []cli.Flag {
	return []cli.Flag{
		cacheGroupFlag(),
		&cli.StringFlag{
			Name:    "key",
			Aliases: []string{"k"},
			Usage:   "show a single configuration key",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
		},
	}
}

func (*CacheConfig) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	d, err := driver(ctx, m, cmd)
	if err != nil {
		return err
	}

	var v any = d.Config()
	if key := cmd.String("key"); key != "" {
		val, ok := d.ConfigValue(key)
		if !ok {
			return fmt.Errorf("cache group has no configuration key %s", key)
		}
		v = val
	}
	return output.Emit(stdout(m), cmd.String("output"), v)
}
