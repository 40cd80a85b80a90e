// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package tcpip provides a socket Adapter for instruments that speak raw
// SCPI over TCP or a telnet-style port.
package tcpip

import (
	"bufio"
	"net"
	"strings"
	"time"

	"github.com/gotmc/scpi"
	"github.com/gotmc/scpi/block"
)

// Adapter is a TCP socket transport.
type Adapter struct {
	conn      net.Conn
	rdr       *bufio.Reader
	writeTerm string
	readTerm  byte
	timeout   time.Duration
}

var (
	_ scpi.Adapter     = (*Adapter)(nil)
	_ scpi.BlockReader = (*Adapter)(nil)
)

type config struct {
	writeTerm string
	readTerm  byte
	timeout   time.Duration
}

// Option configures the connection.
type Option func(*config)

// WithTimeout sets the dial and I/O deadline. The default is 5 s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithTerminators sets the write terminator appended to commands and the
// read terminator ending responses. The defaults are "\n" and '\n'.
func WithTerminators(write string, read byte) Option {
	return func(c *config) {
		c.writeTerm = write
		c.readTerm = read
	}
}

// Dial connects to an instrument at host:port.
func Dial(address string, opts ...Option) (*Adapter, error) {
	c := config{writeTerm: "\n", readTerm: '\n', timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&c)
	}
	conn, err := net.DialTimeout("tcp", address, c.timeout)
	if err != nil {
		return nil, &scpi.CommError{Op: "open", Err: err}
	}
	return &Adapter{
		conn:      conn,
		rdr:       bufio.NewReader(conn),
		writeTerm: c.writeTerm,
		readTerm:  c.readTerm,
		timeout:   c.timeout,
	}, nil
}

// Write sends the command with the write terminator appended.
func (a *Adapter) Write(cmd string) error {
	if err := a.conn.SetWriteDeadline(time.Now().Add(a.timeout)); err != nil {
		return &scpi.CommError{Op: "write", Cmd: cmd, Err: err}
	}
	if _, err := a.conn.Write([]byte(strings.TrimSpace(cmd) + a.writeTerm)); err != nil {
		return &scpi.CommError{Op: "write", Cmd: cmd, Err: err}
	}
	return nil
}

// Read reads up to the read terminator, which is stripped along with any
// trailing carriage return.
func (a *Adapter) Read() (string, error) {
	if err := a.conn.SetReadDeadline(time.Now().Add(a.timeout)); err != nil {
		return "", &scpi.CommError{Op: "read", Err: err}
	}
	s, err := a.rdr.ReadString(a.readTerm)
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
	if err := a.conn.SetReadDeadline(time.Now().Add(a.timeout)); err != nil {
		return nil, &scpi.CommError{Op: "query", Cmd: cmd, Err: err}
	}
	b, err := block.ReadIEEE(a.rdr)
	if err != nil {
		return nil, &scpi.CommError{Op: "query", Cmd: cmd, Err: err}
	}
	return b, nil
}

// Close closes the socket.
func (a *Adapter) Close() error {
	if err := a.conn.Close(); err != nil {
		return &scpi.CommError{Op: "close", Err: err}
	}
	return nil
}
