// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

// Error is the error kind for cache configuration problems. Error() returns
// Message alone; the cause, if any, is reachable through Unwrap.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrCloneForbidden is returned by every driver's Clone.
var ErrCloneForbidden = &Error{Message: "Cloning of K7_Cache objects is forbidden"}
