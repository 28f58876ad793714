// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package meta holds the per-invocation state shared by every task.
package meta
