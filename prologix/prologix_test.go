// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package prologix

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLink captures writes and replays pre-loaded responses, standing in
// for the serial or TCP link to the controller.
type fakeLink struct {
	wr     bytes.Buffer
	rd     bytes.Buffer
	closed bool
}

func (f *fakeLink) Write(p []byte) (int, error) { return f.wr.Write(p) }
func (f *fakeLink) Read(p []byte) (int, error)  { return f.rd.Read(p) }
func (f *fakeLink) Close() error                { f.closed = true; return nil }

func (f *fakeLink) lines() []string {
	s := strings.TrimRight(f.wr.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestNewConfiguresController(t *testing.T) {
	link := &fakeLink{}
	_, err := New(link, 4, false)
	require.NoError(t, err)

	lines := link.lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "++verbose 0", lines[0])
	assert.Equal(t, "++savecfg 0", lines[1])
	assert.Contains(t, lines, "++addr 4")
	assert.Contains(t, lines, "++mode 1")
	assert.Contains(t, lines, "++auto 0")
	assert.Contains(t, lines, "++eoi 1")
	assert.Contains(t, lines, "++eos 0")
	assert.Contains(t, lines, "++read_tmo_ms 500")
	assert.Contains(t, lines, "++eot_char 10")
	assert.Contains(t, lines, "++eot_enable 1")
	assert.Equal(t, "++savecfg 1", lines[len(lines)-1])
}

func TestNewWithOptions(t *testing.T) {
	link := &fakeLink{}
	_, err := New(link, 4, true,
		WithSecondaryAddress(101),
		WithReadTimeout(1000),
	)
	require.NoError(t, err)

	lines := link.lines()
	assert.Contains(t, lines, "++addr 4 101")
	assert.Contains(t, lines, "++read_tmo_ms 1000")
	assert.Equal(t, "++clr", lines[len(lines)-1])
}

func TestNewWithAR488SkipsEEPROMCommands(t *testing.T) {
	link := &fakeLink{}
	_, err := New(link, 4, false, WithAR488())
	require.NoError(t, err)

	for _, line := range link.lines() {
		assert.NotContains(t, line, "verbose")
		assert.NotContains(t, line, "savecfg")
	}
}

func TestInvalidAddresses(t *testing.T) {
	_, err := New(&fakeLink{}, 31, false)
	assert.Error(t, err)

	_, err = New(&fakeLink{}, -1, false)
	assert.Error(t, err)

	_, err = New(&fakeLink{}, 4, false, WithSecondaryAddress(50))
	assert.Error(t, err)
}

func TestWriteForwardsToInstrument(t *testing.T) {
	link := &fakeLink{}
	a, err := New(link, 4, false)
	require.NoError(t, err)
	link.wr.Reset()

	require.NoError(t, a.Write("  *IDN?  "))
	assert.Equal(t, "*IDN?\n", link.wr.String(), "trimmed, terminated, not lowercased")
}

func TestQueryAddressesInstrumentToTalk(t *testing.T) {
	link := &fakeLink{}
	a, err := New(link, 4, false)
	require.NoError(t, err)
	link.wr.Reset()
	link.rd.WriteString("5.0\n")

	s, err := a.Query("VOLT?")
	require.NoError(t, err)
	assert.Equal(t, "5.0", s)
	assert.Equal(t, []string{"VOLT?", "++read eoi"}, link.lines())
}

func TestQueryBlock(t *testing.T) {
	link := &fakeLink{}
	a, err := New(link, 4, false)
	require.NoError(t, err)
	link.rd.WriteString("#15hello\n")

	b, err := a.QueryBlock(":WAV:DATA?")
	require.NoError(t, err)
	assert.Equal(t, []byte("#15hello"), b)
}

func TestInstrumentAddress(t *testing.T) {
	link := &fakeLink{}
	a, err := New(link, 4, false)
	require.NoError(t, err)

	link.rd.WriteString("4 101\n")
	pad, sad, err := a.InstrumentAddress()
	require.NoError(t, err)
	assert.Equal(t, 4, pad)
	assert.Equal(t, 101, sad)

	link.rd.WriteString("nonsense reply here\n")
	_, _, err = a.InstrumentAddress()
	assert.Error(t, err)
}

func TestCloseReturnsLocalControl(t *testing.T) {
	link := &fakeLink{}
	a, err := New(link, 4, false)
	require.NoError(t, err)
	link.wr.Reset()

	require.NoError(t, a.Close())
	assert.Contains(t, link.lines(), "++loc")
	assert.True(t, link.closed)
}

func TestGPIBTermination(t *testing.T) {
	link := &fakeLink{}
	a, err := New(link, 4, false)
	require.NoError(t, err)

	assert.Error(t, a.SetGPIBTermination(GpibTerm(7)))
	require.NoError(t, a.SetGPIBTermination(AppendLF))

	link.rd.WriteString("2\n")
	term, err := a.GPIBTermination()
	require.NoError(t, err)
	assert.Equal(t, AppendLF, term)
	assert.Equal(t, `Append LF (\n) to instrument commands`, term.String())
}
