// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"
	"io"

	"github.com/staranto/k7ctl/internal/cache"
	"github.com/staranto/k7ctl/internal/config"
	"github.com/staranto/k7ctl/internal/encrypt"
)

// Meta are the meta-options that are available on all or most tasks. It
// carries the registries a task draws cache drivers and encrypters from.
type Meta struct {
	Args       []string
	Config     config.Type
	Context    context.Context
	Caches     *cache.Registry
	Encrypters *encrypt.Registry
	Stdin      io.Reader
	Stdout     io.Writer
	TaskDir    string
}
