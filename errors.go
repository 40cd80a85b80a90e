// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package scpi

import "fmt"

// ConfigError reports use of a command property inconsistent with its
// declared capability (reading a write-only property, writing a read-only
// one, addressing an unknown attribute) or an invalid declaration. No I/O
// has occurred when a ConfigError is returned.
type ConfigError struct {
	Attr   string // attribute name, if any
	Op     string // "get", "set", "declare", ...
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Attr == "" {
		return fmt.Sprintf("scpi: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("scpi: %s %q: %s", e.Op, e.Attr, e.Reason)
}

// ValidationError reports a set value rejected by the property's validator
// or formatter. It is returned before any I/O, so the instrument's prior
// state is preserved.
type ValidationError struct {
	Attr  string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scpi: invalid value %v for %q: %s", e.Value, e.Attr, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// CommError reports a transport failure: timeout, disconnect, or malformed
// framing. The state of the physical device afterwards is unknown and must
// be re-queried by the caller. The core never retries.
type CommError struct {
	Op  string // "open", "write", "read", "query", "close"
	Cmd string // offending command, if any
	Err error
}

func (e *CommError) Error() string {
	if e.Cmd == "" {
		return fmt.Sprintf("scpi: %s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("scpi: %s %q: %s", e.Op, e.Cmd, e.Err)
}

func (e *CommError) Unwrap() error { return e.Err }
