// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package tasks holds the built-in cache:* and encrypt:* tasks.
package tasks
