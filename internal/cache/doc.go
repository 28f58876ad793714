// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache resolves named configuration groups to cache drivers. A
// Registry hands out one driver per group and drivers are plugged in by name
// (file, memory, sqlite, s3).
package cache
