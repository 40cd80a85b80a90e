// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package vxi11 provides an Adapter for LAN instruments speaking the VXI-11
// RPC protocol, the ones a VISA resource names as TCPIP::host::INSTR rather
// than a raw SCPI socket. The RPC layer comes from github.com/gotmc/vxi11;
// this package adds the line framing the rest of the stack expects.
package vxi11

import (
	"bufio"
	"io"
	"strings"

	"github.com/gotmc/scpi"
	"github.com/gotmc/scpi/block"
	vxi "github.com/gotmc/vxi11"
)

// Adapter frames SCPI text over one VXI-11 link.
type Adapter struct {
	dev       io.ReadWriteCloser
	rdr       *bufio.Reader
	writeTerm string
	readTerm  byte
}

var (
	_ scpi.Adapter     = (*Adapter)(nil)
	_ scpi.BlockReader = (*Adapter)(nil)
)

// Option configures the adapter.
type Option func(*Adapter)

// WithTerminators sets the write terminator appended to commands and the
// read terminator ending responses. The defaults are "\n" and '\n'.
func WithTerminators(write string, read byte) Option {
	return func(a *Adapter) {
		a.writeTerm = write
		a.readTerm = read
	}
}

// Dial connects to the instrument named by a VISA resource string such as
// TCPIP0::192.168.1.45::inst0::INSTR.
func Dial(resource string, opts ...Option) (*Adapter, error) {
	dev, err := vxi.NewDevice(resource)
	if err != nil {
		return nil, &scpi.CommError{Op: "open", Err: err}
	}
	return New(dev, opts...), nil
}

// New wraps an already-open VXI-11 link. Dial is the usual entry point; New
// exists for callers that manage the RPC connection themselves.
func New(dev io.ReadWriteCloser, opts ...Option) *Adapter {
	a := &Adapter{
		dev:       dev,
		rdr:       bufio.NewReader(dev),
		writeTerm: "\n",
		readTerm:  '\n',
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Write sends the command with the write terminator appended. Leading and
// trailing whitespace is stripped first.
func (a *Adapter) Write(cmd string) error {
	if _, err := a.dev.Write([]byte(strings.TrimSpace(cmd) + a.writeTerm)); err != nil {
		return &scpi.CommError{Op: "write", Cmd: cmd, Err: err}
	}
	return nil
}

// Read reads one response, up to the read terminator, which is stripped
// along with any trailing carriage return. The RPC layer delivers the
// instrument's final byte with an EOF, which ends the response cleanly.
func (a *Adapter) Read() (string, error) {
	s, err := a.rdr.ReadString(a.readTerm)
	if err == io.EOF {
		return strings.TrimRight(s, "\r\n"), nil
	}
	if err != nil {
		return "", &scpi.CommError{Op: "read", Err: err}
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Query writes the command and reads the response as one transaction.
func (a *Adapter) Query(cmd string) (string, error) {
	if err := a.Write(cmd); err != nil {
		return "", err
	}
	return a.Read()
}

// QueryBlock writes the command and reads back one IEEE 488.2
// definite-length block with its framing intact.
func (a *Adapter) QueryBlock(cmd string) ([]byte, error) {
	if err := a.Write(cmd); err != nil {
		return nil, err
	}
	b, err := block.ReadIEEE(a.rdr)
	if err != nil {
		return nil, &scpi.CommError{Op: "query", Cmd: cmd, Err: err}
	}
	return b, nil
}

// Close destroys the VXI-11 link.
func (a *Adapter) Close() error {
	if err := a.dev.Close(); err != nil {
		return &scpi.CommError{Op: "close", Err: err}
	}
	return nil
}
