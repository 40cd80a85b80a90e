// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package asrl provides a serial-port Adapter for instruments on RS-232 or
// USB virtual COM ports.
package asrl

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gotmc/scpi"
	bserial "go.bug.st/serial"
)

// ErrTimeout is the cause wrapped by a *scpi.CommError when a read expires
// before the terminator arrives.
var ErrTimeout = errors.New("read timeout")

// Adapter is a serial-port transport.
type Adapter struct {
	port      bserial.Port
	writeTerm string
	readTerm  byte
	timeout   time.Duration
}

var (
	_ scpi.Adapter     = (*Adapter)(nil)
	_ scpi.BlockReader = (*Adapter)(nil)
)

type config struct {
	baud      int
	dataBits  int
	parity    bserial.Parity
	stopBits  bserial.StopBits
	writeTerm string
	readTerm  byte
	timeout   time.Duration
}

// Option configures the serial port before it is opened.
type Option func(*config)

// WithBaudRate sets the baud rate. The default is 115200.
func WithBaudRate(baud int) Option {
	return func(c *config) { c.baud = baud }
}

// WithTimeout sets the read timeout. The default is 5 s.
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

// With7E1 selects 7 data bits, even parity, one stop bit, for older
// instruments that never left that framing behind.
func With7E1() Option {
	return func(c *config) {
		c.dataBits = 7
		c.parity = bserial.EvenParity
	}
}

func defaults() config {
	return config{
		baud:      115200,
		dataBits:  8,
		parity:    bserial.NoParity,
		stopBits:  bserial.OneStopBit,
		writeTerm: "\n",
		readTerm:  '\n',
		timeout:   5 * time.Second,
	}
}

func openPort(name string, c config) (bserial.Port, error) {
	mode := &bserial.Mode{
		BaudRate: c.baud,
		DataBits: c.dataBits,
		Parity:   c.parity,
		StopBits: c.stopBits,
	}
	port, err := bserial.Open(name, mode)
	if err != nil {
		return nil, &scpi.CommError{Op: "open", Err: err}
	}
	if err := port.SetReadTimeout(c.timeout); err != nil {
		_ = port.Close()
		return nil, &scpi.CommError{Op: "open", Err: err}
	}
	return port, nil
}

// Open opens the named serial port (e.g. /dev/ttyUSB0) with 115200 8N1
// framing unless options say otherwise.
func Open(name string, opts ...Option) (*Adapter, error) {
	c := defaults()
	for _, opt := range opts {
		opt(&c)
	}
	port, err := openPort(name, c)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		port:      port,
		writeTerm: c.writeTerm,
		readTerm:  c.readTerm,
		timeout:   c.timeout,
	}, nil
}

// OpenPort opens the named serial port and returns the raw byte stream, for
// layering transports that do their own framing, such as a Prologix
// controller.
func OpenPort(name string, opts ...Option) (io.ReadWriteCloser, error) {
	c := defaults()
	for _, opt := range opts {
		opt(&c)
	}
	return openPort(name, c)
}

// Write sends the command with the write terminator appended. Leading and
// trailing whitespace is stripped first.
func (a *Adapter) Write(cmd string) error {
	_, err := a.port.Write([]byte(strings.TrimSpace(cmd) + a.writeTerm))
	if err != nil {
		return &scpi.CommError{Op: "write", Cmd: cmd, Err: err}
	}
	return nil
}

// Read reads up to the read terminator. A zero-byte read from the port
// means the timeout expired; the connection state is then undefined.
func (a *Adapter) Read() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := a.port.Read(buf)
		if err != nil {
			return "", &scpi.CommError{Op: "read", Err: err}
		}
		if n == 0 {
			return "", &scpi.CommError{Op: "read", Err: ErrTimeout}
		}
		if buf[0] == a.readTerm {
			break
		}
		sb.WriteByte(buf[0])
	}
	return strings.TrimRight(sb.String(), "\r"), nil
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
	b, err := readBlock(a.port.Read)
	if err != nil {
		return nil, &scpi.CommError{Op: "query", Cmd: cmd, Err: err}
	}
	return b, nil
}

// Close discards unread input and closes the port.
func (a *Adapter) Close() error {
	if err := a.port.ResetInputBuffer(); err != nil {
		_ = a.port.Close()
		return &scpi.CommError{Op: "close", Err: err}
	}
	if err := a.port.Close(); err != nil {
		return &scpi.CommError{Op: "close", Err: err}
	}
	return nil
}
