// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package prologix provides an Adapter that reaches GPIB instruments
// through a Prologix GPIB-USB or GPIB-Ethernet controller (or the
// Arduino-based AR488 clone). Controller commands are prefixed with `++`;
// anything else is forwarded to the instrument at the configured GPIB
// address.
package prologix

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gotmc/scpi"
	"github.com/gotmc/scpi/block"
	"go.uber.org/multierr"
)

// Adapter models a GPIB controller-in-charge addressing one instrument.
type Adapter struct {
	rw               io.ReadWriter
	rdr              *bufio.Reader
	primaryAddr      int
	hasSecondaryAddr bool
	secondaryAddr    int
	auto             bool // read-after-write
	usbTerm          byte // terminator toward the controller
	eotChar          byte // char the controller appends when EOI is seen
	readTimeoutMS    int
	writeDelay       time.Duration
	ar488            bool
}

var (
	_ scpi.Adapter     = (*Adapter)(nil)
	_ scpi.BlockReader = (*Adapter)(nil)
)

// Option applies an option to the adapter.
type Option func(*Adapter)

// WithSecondaryAddress sets a secondary GPIB address, which must be in the
// range 96 through 126, inclusive.
func WithSecondaryAddress(addr int) Option {
	return func(a *Adapter) {
		a.hasSecondaryAddr = true
		a.secondaryAddr = addr
	}
}

// WithAR488 slightly alters the init commands for compatibility with the
// Arduino-based AR488: no `verbose 0`, and savecfg is never toggled, since
// doing so wears the EEPROM.
func WithAR488() Option { return func(a *Adapter) { a.ar488 = true } }

// WithWriteDelay inserts a pause after every write toward the instrument,
// for devices that drop back-to-back commands.
func WithWriteDelay(d time.Duration) Option {
	return func(a *Adapter) { a.writeDelay = d }
}

// WithReadTimeout sets the controller's GPIB read timeout in milliseconds.
// The default is 500 ms.
func WithReadTimeout(ms int) Option {
	return func(a *Adapter) { a.readTimeoutMS = ms }
}

// New creates a GPIB controller-in-charge at the given primary address over
// the given Prologix link, which can be a serial port, a USB connection, or
// a TCP socket. Enable clear to send the Selected Device Clear message to
// the address during setup.
func New(rw io.ReadWriter, addr int, clear bool, opts ...Option) (*Adapter, error) {
	a := Adapter{
		rw:            rw,
		rdr:           bufio.NewReader(rw),
		primaryAddr:   addr,
		auto:          false,
		usbTerm:       '\n',
		eotChar:       '\n',
		readTimeoutMS: 500,
	}
	for _, opt := range opts {
		opt(&a)
	}

	if !isPrimaryAddressValid(a.primaryAddr) {
		return nil, fmt.Errorf("invalid primary address %d (must be 0-30)", a.primaryAddr)
	}
	addrCmd := fmt.Sprintf("addr %d", a.primaryAddr)
	if a.hasSecondaryAddr {
		if !isSecondaryAddressValid(a.secondaryAddr) {
			return nil, fmt.Errorf("invalid secondary address %d (must be 96-126)", a.secondaryAddr)
		}
		addrCmd = fmt.Sprintf("addr %d %d", a.primaryAddr, a.secondaryAddr)
	}

	cmds := []string{}
	if !a.ar488 {
		cmds = append(cmds,
			"verbose 0", // turn off verbosity if on
			"savecfg 0", // don't persist what follows to EPROM
		)
	}
	cmds = append(cmds,
		addrCmd,  // set the instrument address
		"mode 1", // controller mode
		"auto 0", // no read-after-write; we ask explicitly
		"eoi 1",  // assert EOI with the last character
		"eos 0",  // GPIB termination CR+LF
		fmt.Sprintf("read_tmo_ms %d", a.readTimeoutMS),
		fmt.Sprintf("eot_char %d", a.eotChar),
		"eot_enable 1", // append eot_char when EOI detected
	)
	if !a.ar488 {
		cmds = append(cmds, "savecfg 1")
	}
	if clear {
		cmds = append(cmds, "clr")
	}
	for _, cmd := range cmds {
		if err := a.CommandController(cmd); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

// Write forwards one command to the instrument at the configured GPIB
// address. Leading and trailing whitespace is stripped before the USB
// terminator is appended.
func (a *Adapter) Write(cmd string) error {
	s := fmt.Sprintf("%s%c", strings.TrimSpace(cmd), a.usbTerm)
	if _, err := a.rw.Write([]byte(s)); err != nil {
		return &scpi.CommError{Op: "write", Cmd: cmd, Err: err}
	}
	if a.writeDelay > 0 {
		time.Sleep(a.writeDelay)
	}
	return nil
}

// Read reads one response from the instrument. With read-after-write
// disabled the controller must be told to address the instrument to talk,
// so a `++read eoi` precedes the actual read.
func (a *Adapter) Read() (string, error) {
	if !a.auto {
		if err := a.CommandController("read eoi"); err != nil {
			return "", err
		}
	}
	s, err := a.rdr.ReadString(a.eotChar)
	if err == io.EOF {
		// The controller closed the conversation after the final byte;
		// whatever arrived is the response.
		return strings.TrimRight(s, "\r\n"), nil
	}
	if err != nil {
		return "", &scpi.CommError{Op: "read", Err: err}
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Query writes the command to the instrument and reads its response as one
// transaction.
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
	if !a.auto {
		if err := a.CommandController("read eoi"); err != nil {
			return nil, err
		}
	}
	b, err := block.ReadIEEE(a.rdr)
	if err != nil {
		return nil, &scpi.CommError{Op: "query", Cmd: cmd, Err: err}
	}
	return b, nil
}

// CommandController sends a command to the Prologix controller itself. Two
// plus signs are prepended so it is not transmitted over GPIB.
func (a *Adapter) CommandController(cmd string) error {
	s := fmt.Sprintf("++%s%c", strings.ToLower(strings.TrimSpace(cmd)), a.usbTerm)
	if _, err := a.rw.Write([]byte(s)); err != nil {
		return &scpi.CommError{Op: "write", Cmd: "++" + cmd, Err: err}
	}
	return nil
}

// QueryController sends a command to the Prologix controller and returns
// its response.
func (a *Adapter) QueryController(cmd string) (string, error) {
	if err := a.CommandController(cmd); err != nil {
		return "", err
	}
	s, err := a.rdr.ReadString(a.eotChar)
	if err != nil && err != io.EOF {
		return "", &scpi.CommError{Op: "read", Cmd: "++" + cmd, Err: err}
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Version returns the controller's version string.
func (a *Adapter) Version() (string, error) {
	return a.QueryController("ver")
}

// InstrumentAddress returns the GPIB primary and secondary address the
// controller is configured for. The secondary address is zero when unset.
func (a *Adapter) InstrumentAddress() (pad, sad int, err error) {
	s, err := a.QueryController("addr")
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, 0, fmt.Errorf("unexpected addr reply %q", s)
	}
	if pad, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, fmt.Errorf("unexpected addr reply %q", s)
	}
	if len(fields) == 2 {
		if sad, err = strconv.Atoi(fields[1]); err != nil {
			return 0, 0, fmt.Errorf("unexpected addr reply %q", s)
		}
	}
	return pad, sad, nil
}

// ReadAfterWrite reports whether the controller automatically addresses
// the instrument to talk after every write.
func (a *Adapter) ReadAfterWrite() (bool, error) {
	s, err := a.QueryController("auto")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(s) == "1", nil
}

// ServiceRequest reports whether the GPIB SRQ line is asserted.
func (a *Adapter) ServiceRequest() (bool, error) {
	s, err := a.QueryController("srq")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(s) == "1", nil
}

// ClearDevice sends the Selected Device Clear message to the configured
// address.
func (a *Adapter) ClearDevice() error {
	return a.CommandController("clr")
}

// FrontPanel returns the instrument to local front-panel control when local
// is true, or locks it out when false.
func (a *Adapter) FrontPanel(local bool) error {
	if local {
		return a.CommandController("loc")
	}
	return a.CommandController("llo")
}

// Close returns the instrument to local control and closes the underlying
// link if it can be closed.
func (a *Adapter) Close() error {
	err := a.FrontPanel(true)
	if c, ok := a.rw.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// GpibTerm provides the type for the available GPIB terminators.
type GpibTerm int

// Available GPIB terminators for the Prologix controller.
const (
	AppendCRLF GpibTerm = iota
	AppendCR
	AppendLF
	AppendNothing
)

var gpibTermDesc = map[GpibTerm]string{
	AppendCRLF:    `Append CR+LF (\r\n) to instrument commands`,
	AppendCR:      `Append CR (\r) to instrument commands`,
	AppendLF:      `Append LF (\n) to instrument commands`,
	AppendNothing: `Do not append anything to instrument commands`,
}

func (term GpibTerm) String() string {
	return gpibTermDesc[term]
}

// SetGPIBTermination sets the terminator the controller appends to
// commands sent over GPIB.
func (a *Adapter) SetGPIBTermination(term GpibTerm) error {
	if term < AppendCRLF || term > AppendNothing {
		return fmt.Errorf("invalid GPIB termination %d", term)
	}
	return a.CommandController(fmt.Sprintf("eos %d", term))
}

// GPIBTermination returns the terminator the controller appends to
// commands sent over GPIB.
func (a *Adapter) GPIBTermination() (GpibTerm, error) {
	s, err := a.QueryController("eos")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < int(AppendCRLF) || n > int(AppendNothing) {
		return 0, fmt.Errorf("unexpected eos reply %q", s)
	}
	return GpibTerm(n), nil
}

// isPrimaryAddressValid checks that the primary GPIB address is between 0
// and 30, inclusive.
func isPrimaryAddressValid(addr int) bool {
	return addr >= 0 && addr <= 30
}

// isSecondaryAddressValid checks that the secondary GPIB address is between
// 96 and 126, inclusive.
func isSecondaryAddressValid(addr int) bool {
	return addr >= 96 && addr <= 126
}
