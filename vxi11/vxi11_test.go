// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package vxi11

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLink captures writes and replays pre-loaded responses, standing in
// for the RPC link to the instrument.
type fakeLink struct {
	wr     bytes.Buffer
	rd     bytes.Buffer
	closed bool
}

func (f *fakeLink) Write(p []byte) (int, error) { return f.wr.Write(p) }
func (f *fakeLink) Read(p []byte) (int, error)  { return f.rd.Read(p) }
func (f *fakeLink) Close() error                { f.closed = true; return nil }

func TestQueryRoundTrip(t *testing.T) {
	link := &fakeLink{}
	link.rd.WriteString("ACME,MODEL1,0,1.0\r\n")
	a := New(link)

	s, err := a.Query("  *IDN?  ")
	require.NoError(t, err)
	assert.Equal(t, "ACME,MODEL1,0,1.0", s, "terminators and CR stripped")
	assert.Equal(t, "*IDN?\n", link.wr.String(), "trimmed and terminated")
}

func TestReadToleratesEOFAfterFinalByte(t *testing.T) {
	link := &fakeLink{}
	link.rd.WriteString("5.0")
	a := New(link)

	s, err := a.Read()
	require.NoError(t, err)
	assert.Equal(t, "5.0", s)
}

func TestQueryBlock(t *testing.T) {
	link := &fakeLink{}
	link.rd.WriteString("#15hello\n")
	a := New(link)

	b, err := a.QueryBlock(":WAV:DATA?")
	require.NoError(t, err)
	assert.Equal(t, []byte("#15hello"), b)
}

func TestTerminatorOptions(t *testing.T) {
	link := &fakeLink{}
	link.rd.WriteString("ok\r")
	a := New(link, WithTerminators("\r\n", '\r'))

	require.NoError(t, a.Write("SYST:REM"))
	assert.Equal(t, "SYST:REM\r\n", link.wr.String())

	s, err := a.Read()
	require.NoError(t, err)
	assert.Equal(t, "ok", s)
}

func TestClose(t *testing.T) {
	link := &fakeLink{}
	a := New(link)
	require.NoError(t, a.Close())
	assert.True(t, link.closed)
}
