// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package sim provides a scripted Adapter that substitutes for hardware in
// tests. A script is an ordered list of expected writes with canned
// responses; a write that does not match the next entry fails with
// *MismatchError and does not advance the script, so instrument logic can
// be tested deterministically without a device.
package sim

import (
	"errors"
	"fmt"

	"github.com/gotmc/scpi"
	"go.uber.org/multierr"
)

// Exchange is one scripted write and, optionally, the response it produces.
type Exchange struct {
	Cmd     string // expected command, exactly as written by the caller
	Resp    string // canned response; empty means the write produces none
	HasResp bool   // script a response even when Resp is the empty string
}

// MismatchError reports a write the script did not expect.
type MismatchError struct {
	Index int    // script position
	Want  string // expected command; empty if the script was exhausted
	Got   string
}

func (e *MismatchError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("sim: script exhausted at exchange %d, got unexpected %q", e.Index, e.Got)
	}
	return fmt.Sprintf("sim: exchange %d: want %q, got %q", e.Index, e.Want, e.Got)
}

// Adapter replays a script. It implements scpi.Adapter and
// scpi.BlockReader.
type Adapter struct {
	script  []Exchange
	next    int
	pending []string // responses queued by matched writes
}

var (
	_ scpi.Adapter     = (*Adapter)(nil)
	_ scpi.BlockReader = (*Adapter)(nil)
)

// New creates a scripted adapter that expects the given exchanges in order.
func New(script ...Exchange) *Adapter {
	return &Adapter{script: script}
}

// Write matches cmd against the next scripted exchange. On a match the
// exchange's response, if any, is queued for Read; on a mismatch the script
// does not advance.
func (a *Adapter) Write(cmd string) error {
	if a.next >= len(a.script) {
		return &MismatchError{Index: a.next, Got: cmd}
	}
	want := a.script[a.next]
	if cmd != want.Cmd {
		return &MismatchError{Index: a.next, Want: want.Cmd, Got: cmd}
	}
	a.next++
	if want.Resp != "" || want.HasResp {
		a.pending = append(a.pending, want.Resp)
	}
	return nil
}

// Read pops the oldest queued response.
func (a *Adapter) Read() (string, error) {
	if len(a.pending) == 0 {
		return "", &scpi.CommError{Op: "read", Err: errors.New("no scripted response queued")}
	}
	s := a.pending[0]
	a.pending = a.pending[1:]
	return s, nil
}

// Query writes cmd and reads the response it queued.
func (a *Adapter) Query(cmd string) (string, error) {
	if err := a.Write(cmd); err != nil {
		return "", err
	}
	return a.Read()
}

// QueryBlock writes cmd and returns the queued response as raw bytes, so
// scripts can carry framed binary blocks.
func (a *Adapter) QueryBlock(cmd string) ([]byte, error) {
	s, err := a.Query(cmd)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Close is a no-op; Done reports script completeness.
func (a *Adapter) Close() error { return nil }

// Done fails if scripted exchanges were never consumed or responses were
// never read, one error per leftover.
func (a *Adapter) Done() error {
	var errs error
	for i := a.next; i < len(a.script); i++ {
		errs = multierr.Append(errs, fmt.Errorf("sim: unconsumed exchange %d: %q", i, a.script[i].Cmd))
	}
	for _, resp := range a.pending {
		errs = multierr.Append(errs, fmt.Errorf("sim: unread response %q", resp))
	}
	return errs
}
