// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package version holds the build version, set at link time with
// -ldflags "-X github.com/staranto/k7ctl/internal/version.Version=...".
package version

var Version = "dev"
