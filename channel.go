// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package scpi

import (
	"strings"

	"go.uber.org/multierr"
)

// Channel is an addressable sub-unit of an Instrument: an SMU channel, a
// scope input, one output of a multi-channel supply. A channel holds no
// transport of its own; it substitutes its id for the {ch} placeholder in
// command templates and forwards the result to the parent's adapter.
type Channel struct {
	inst  *Instrument
	id    string
	props map[string]*Property // shared across the group, read-only
}

// NewChannelGroup attaches one homogeneous group of channels, all sharing
// the given per-channel property declarations. Channels keep their
// declaration order: Channels and GetAll iterate in exactly the order ids
// were given here, so downstream alignment of values to channel labels is
// stable.
func (in *Instrument) NewChannelGroup(ids []string, props ...Property) ([]*Channel, error) {
	shared := make(map[string]*Property, len(props))
	var errs error
	for i := range props {
		p := props[i]
		if err := p.checkDecl(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := shared[p.name]; dup {
			errs = multierr.Append(errs, &ConfigError{Attr: p.name, Op: "declare", Reason: "duplicate attribute"})
			continue
		}
		shared[p.name] = &p
	}
	for _, id := range ids {
		if id == "" {
			errs = multierr.Append(errs, &ConfigError{Op: "declare", Reason: "empty channel id"})
			continue
		}
		if _, dup := in.byID[id]; dup {
			errs = multierr.Append(errs, &ConfigError{Attr: id, Op: "declare", Reason: "duplicate channel id"})
		}
	}
	if errs != nil {
		return nil, errs
	}
	group := make([]*Channel, 0, len(ids))
	for _, id := range ids {
		ch := &Channel{inst: in, id: id, props: shared}
		in.channels = append(in.channels, ch)
		in.byID[id] = ch
		group = append(group, ch)
	}
	return group, nil
}

// Channel returns the channel with the given id.
func (in *Instrument) Channel(id string) (*Channel, error) {
	ch, ok := in.byID[id]
	if !ok {
		return nil, &ConfigError{Attr: id, Op: "channel", Reason: "unknown channel"}
	}
	return ch, nil
}

// Channels returns every channel in declaration order.
func (in *Instrument) Channels() []*Channel {
	return append([]*Channel(nil), in.channels...)
}

// GetAll reads the named per-channel attribute from every channel that
// declares it, in declaration order. For a single homogeneous group the
// result aligns one-to-one with Channels.
func (in *Instrument) GetAll(name string) ([]any, error) {
	var vals []any
	found := false
	for _, ch := range in.channels {
		p, ok := ch.props[name]
		if !ok {
			continue
		}
		found = true
		v, err := p.getFrom(ch)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	if !found {
		return nil, &ConfigError{Attr: name, Op: "get", Reason: "no channel declares this attribute"}
	}
	return vals, nil
}

// ID returns the channel identifier substituted into command templates.
func (ch *Channel) ID() string { return ch.id }

func (ch *Channel) expand(cmd string) string {
	return strings.ReplaceAll(cmd, "{ch}", ch.id)
}

// Write expands {ch} and sends the command through the parent instrument.
func (ch *Channel) Write(cmd string) error {
	return ch.inst.Write(ch.expand(cmd))
}

// Query expands {ch} and queries through the parent instrument.
func (ch *Channel) Query(cmd string) (string, error) {
	return ch.inst.Query(ch.expand(cmd))
}

func (ch *Channel) queryBlock(cmd string) ([]byte, error) {
	return ch.inst.queryBlock(ch.expand(cmd))
}

// QueryBlock expands {ch} and reads one framed binary block.
func (ch *Channel) QueryBlock(cmd string) ([]byte, error) {
	return ch.queryBlock(cmd)
}

// Set writes the named per-channel attribute on this channel only.
func (ch *Channel) Set(name string, v any) error {
	p, ok := ch.props[name]
	if !ok {
		return &ConfigError{Attr: name, Op: "set", Reason: "unknown attribute on channel " + ch.id}
	}
	return p.setOn(ch, v)
}

// Get reads the named per-channel attribute from this channel.
func (ch *Channel) Get(name string) (any, error) {
	p, ok := ch.props[name]
	if !ok {
		return nil, &ConfigError{Attr: name, Op: "get", Reason: "unknown attribute on channel " + ch.id}
	}
	return p.getFrom(ch)
}

// GetFloat64 reads a numeric per-channel attribute.
func (ch *Channel) GetFloat64(name string) (float64, error) {
	v, err := ch.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &ConfigError{Attr: name, Op: "get", Reason: "attribute is not numeric"}
	}
	return f, nil
}

// GetBool reads a boolean per-channel attribute.
func (ch *Channel) GetBool(name string) (bool, error) {
	v, err := ch.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &ConfigError{Attr: name, Op: "get", Reason: "attribute is not boolean"}
	}
	return b, nil
}
