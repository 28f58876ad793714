// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package minion defines command line tasks, keeps a registry of them and
// provides the help task that lists what is available.
package minion
