// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package scpi maps SCPI-style textual instrument commands to typed
// attributes. An Instrument composes an Adapter (the transport) with an
// immutable table of command properties and, optionally, groups of
// addressable channels that share the same transport.
//
// All I/O is synchronous and blocking. One Instrument owns its Adapter
// exclusively; nothing in this package serializes concurrent callers, since
// interleaved writes on one transport would corrupt the request-response
// pairing. Instruments on independent adapters may be driven from
// independent goroutines.
package scpi

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gotmc/query"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Instrument represents one physical device reached through one Adapter.
type Instrument struct {
	adapter  Adapter
	props    map[string]*Property
	channels []*Channel // declaration order
	byID     map[string]*Channel
	log      logrus.FieldLogger
	delay    time.Duration
}

var _ query.Querier = (*Instrument)(nil)

// Option configures an Instrument.
type Option func(*Instrument)

// WithLogger routes wire traffic tracing to the given logger at debug level.
// The default logger discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(in *Instrument) { in.log = l }
}

// WithWriteDelay inserts a pause after every write, for instruments that
// drop commands arriving back to back.
func WithWriteDelay(d time.Duration) Option {
	return func(in *Instrument) { in.delay = d }
}

// New creates an Instrument over the given adapter with the given property
// table. The table is resolved once here and is immutable afterwards.
// Declaration problems are reported together as *ConfigError values.
func New(adapter Adapter, props []Property, opts ...Option) (*Instrument, error) {
	in := &Instrument{
		adapter: adapter,
		props:   make(map[string]*Property, len(props)),
		byID:    make(map[string]*Channel),
		log:     discardLogger(),
	}
	var errs error
	for i := range props {
		p := props[i]
		if err := p.checkDecl(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := in.props[p.name]; dup {
			errs = multierr.Append(errs, &ConfigError{Attr: p.name, Op: "declare", Reason: "duplicate attribute"})
			continue
		}
		in.props[p.name] = &p
	}
	if errs != nil {
		return nil, errs
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Write sends one raw command through the adapter.
func (in *Instrument) Write(cmd string) error {
	in.log.WithField("cmd", cmd).Debug("write")
	err := in.adapter.Write(cmd)
	if err == nil && in.delay > 0 {
		time.Sleep(in.delay)
	}
	return err
}

// Read reads one raw response from the adapter.
func (in *Instrument) Read() (string, error) {
	s, err := in.adapter.Read()
	in.log.WithField("resp", s).Debug("read")
	return s, err
}

// Query writes the command and reads back the response as one transaction.
// Instrument satisfies query.Querier, so the typed helpers in
// github.com/gotmc/query work directly against it.
func (in *Instrument) Query(cmd string) (string, error) {
	in.log.WithField("cmd", cmd).Debug("query")
	s, err := in.adapter.Query(cmd)
	in.log.WithFields(logrus.Fields{"cmd": cmd, "resp": s}).Debug("reply")
	if err == nil && in.delay > 0 {
		time.Sleep(in.delay)
	}
	return s, err
}

// Values queries the command and parses the reply as a comma-separated list
// of floats, the conventional SCPI multi-value reply shape.
func (in *Instrument) Values(cmd string) ([]float64, error) {
	s, err := in.Query(cmd)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(strings.TrimSpace(s), ",")
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, &CommError{Op: "parse", Cmd: cmd, Err: err}
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// QueryBlock writes the command and reads back one framed binary block.
// It fails with *ConfigError if the adapter has no binary capability.
func (in *Instrument) QueryBlock(cmd string) ([]byte, error) {
	return in.queryBlock(cmd)
}

func (in *Instrument) queryBlock(cmd string) ([]byte, error) {
	br, ok := in.adapter.(BlockReader)
	if !ok {
		return nil, &ConfigError{Op: "query", Reason: "adapter does not support block reads"}
	}
	in.log.WithField("cmd", cmd).Debug("query block")
	return br.QueryBlock(cmd)
}

// Set validates, formats, and writes the named attribute. Values that fail
// validation never reach the wire.
func (in *Instrument) Set(name string, v any) error {
	p, ok := in.props[name]
	if !ok {
		return &ConfigError{Attr: name, Op: "set", Reason: "unknown attribute"}
	}
	return p.setOn(in, v)
}

// Get issues the named attribute's get command and returns the parsed value.
func (in *Instrument) Get(name string) (any, error) {
	p, ok := in.props[name]
	if !ok {
		return nil, &ConfigError{Attr: name, Op: "get", Reason: "unknown attribute"}
	}
	return p.getFrom(in)
}

// GetFloat64 reads a numeric attribute.
func (in *Instrument) GetFloat64(name string) (float64, error) {
	v, err := in.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &ConfigError{Attr: name, Op: "get", Reason: "attribute is not numeric"}
	}
	return f, nil
}

// GetInt reads a numeric attribute and converts it to an integer; it fails
// if the reply has a fractional part.
func (in *Instrument) GetInt(name string) (int, error) {
	f, err := in.GetFloat64(name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &ConfigError{Attr: name, Op: "get", Reason: "attribute is not an integer"}
	}
	return int(f), nil
}

// GetBool reads a boolean attribute.
func (in *Instrument) GetBool(name string) (bool, error) {
	v, err := in.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &ConfigError{Attr: name, Op: "get", Reason: "attribute is not boolean"}
	}
	return b, nil
}

// GetString reads a string attribute.
func (in *Instrument) GetString(name string) (string, error) {
	v, err := in.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &ConfigError{Attr: name, Op: "get", Reason: "attribute is not a string"}
	}
	return s, nil
}

// Close releases the adapter. The instrument must not be used afterwards.
func (in *Instrument) Close() error {
	return in.adapter.Close()
}
