// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package encrypt wraps symmetric cipher engines behind one contract and
// resolves named configuration groups to ready-to-use encrypters.
package encrypt
