// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package scpi

import (
	"strings"

	"github.com/gotmc/scpi/validate"
)

// Property binds a human-facing attribute name to a wire-level get/set
// command pair, a validator, and a formatter/parser pair. Properties are
// declared once per instrument type and are immutable after declaration; the
// same table is shared read-only by every instance.
//
// Set templates carry a {value} placeholder for the formatted value; if the
// placeholder is absent, the value is appended after a space. Templates used
// on channels additionally carry a {ch} placeholder for the channel id.
type Property struct {
	name     string
	get      string // get command; empty means write-only
	set      string // set command template; empty means read-only
	kind     Kind
	validate validate.Func
	format   FormatFunc
	parse    ParseFunc
}

// PropertyOption configures a property at declaration time.
type PropertyOption func(*Property)

// WithValidator sets the validator applied to every set value before any
// I/O occurs.
func WithValidator(f validate.Func) PropertyOption {
	return func(p *Property) { p.validate = f }
}

// WithKind selects the value kind, and with it the default formatter and
// parser. The default kind is Numeric.
func WithKind(k Kind) PropertyOption {
	return func(p *Property) { p.kind = k }
}

// WithEnum declares an enumerated property from a value→wire-token mapping.
// The parser performs the reverse lookup.
func WithEnum(values map[any]string) PropertyOption {
	return func(p *Property) {
		p.kind = Enum
		p.format, p.parse = enumCodec(values)
	}
}

// WithFormat overrides the kind's default formatter.
func WithFormat(f FormatFunc) PropertyOption {
	return func(p *Property) { p.format = f }
}

// WithParse overrides the kind's default parser.
func WithParse(f ParseFunc) PropertyOption {
	return func(p *Property) { p.parse = f }
}

// Control declares a property with both get and set semantics.
func Control(name, get, set string, opts ...PropertyOption) Property {
	p := Property{name: name, get: get, set: set, kind: Numeric}
	for _, opt := range opts {
		opt(&p)
	}
	if p.format == nil || p.parse == nil {
		format, parse := kindCodec(p.kind)
		if p.format == nil {
			p.format = format
		}
		if p.parse == nil {
			p.parse = parse
		}
	}
	return p
}

// Setting declares a write-only property. Reads fail with *ConfigError
// before any I/O.
func Setting(name, set string, opts ...PropertyOption) Property {
	return Control(name, "", set, opts...)
}

// Measurement declares a read-only property. Writes fail with *ConfigError
// before any I/O.
func Measurement(name, get string, opts ...PropertyOption) Property {
	return Control(name, get, "", opts...)
}

// Name returns the attribute name the property is bound to.
func (p Property) Name() string { return p.name }

// conduit is the wire surface a property operates through: the instrument
// itself, or a channel that expands {ch} before forwarding to its parent.
type conduit interface {
	Write(cmd string) error
	Query(cmd string) (string, error)
	queryBlock(cmd string) ([]byte, error)
}

func (p *Property) setOn(c conduit, v any) error {
	if p.set == "" {
		return &ConfigError{Attr: p.name, Op: "set", Reason: "read-only property"}
	}
	if p.kind == Block {
		return &ConfigError{Attr: p.name, Op: "set", Reason: "block properties are read-only"}
	}
	val := v
	if p.validate != nil {
		var err error
		if val, err = p.validate(v); err != nil {
			return &ValidationError{Attr: p.name, Value: v, Err: err}
		}
	}
	s, err := p.format(val)
	if err != nil {
		return &ValidationError{Attr: p.name, Value: v, Err: err}
	}
	return c.Write(expandValue(p.set, s))
}

func (p *Property) getFrom(c conduit) (any, error) {
	if p.get == "" {
		return nil, &ConfigError{Attr: p.name, Op: "get", Reason: "write-only property"}
	}
	if p.kind == Block {
		raw, err := c.queryBlock(p.get)
		if err != nil {
			return nil, err
		}
		if p.parse != nil {
			return p.parse(string(raw))
		}
		return raw, nil
	}
	s, err := c.Query(p.get)
	if err != nil {
		return nil, err
	}
	v, err := p.parse(s)
	if err != nil {
		return nil, &CommError{Op: "parse", Cmd: p.get, Err: err}
	}
	return v, nil
}

func expandValue(tpl, value string) string {
	if strings.Contains(tpl, "{value}") {
		return strings.ReplaceAll(tpl, "{value}", value)
	}
	return tpl + " " + value
}

// checkDecl validates a property declaration for table construction.
func (p *Property) checkDecl() error {
	if p.name == "" {
		return &ConfigError{Op: "declare", Reason: "property has no name"}
	}
	if p.get == "" && p.set == "" {
		return &ConfigError{Attr: p.name, Op: "declare", Reason: "neither get nor set command configured"}
	}
	if p.kind != Block && (p.format == nil || p.parse == nil) {
		return &ConfigError{Attr: p.name, Op: "declare", Reason: "no formatter/parser for kind " + p.kind.String()}
	}
	return nil
}
