// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package scpi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the value kinds a command property can carry on the wire.
// Each kind has one default formatter/parser pair, selected when the property
// is declared rather than by runtime type inspection.
type Kind int

const (
	Numeric Kind = iota // bare ASCII integer or float
	Boolean             // 1/0 on the wire, ON/OFF accepted on parse
	Enum                // one token from a declared mapping
	String              // free text, surrounding whitespace stripped
	Block               // IEEE 488.2 definite-length binary block
)

var kindNames = map[Kind]string{
	Numeric: "numeric",
	Boolean: "boolean",
	Enum:    "enum",
	String:  "string",
	Block:   "block",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// FormatFunc serializes a typed value into its wire text.
type FormatFunc func(v any) (string, error)

// ParseFunc decodes wire text into a typed value.
type ParseFunc func(s string) (any, error)

// formatNumeric accepts the common Go numeric types and emits the shortest
// exact decimal representation. Floats always carry a decimal point or an
// exponent, so 5.0 renders as "5.0", never "5"; integer types render bare.
func formatNumeric(v any) (string, error) {
	switch n := v.(type) {
	case float64:
		return formatFloat(n, 64), nil
	case float32:
		return formatFloat(float64(n), 32), nil
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	default:
		return "", fmt.Errorf("cannot format %T as numeric", v)
	}
}

func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}

func parseNumeric(s string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("malformed numeric reply %q", strings.TrimSpace(s))
	}
	return f, nil
}

func formatBoolean(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", fmt.Errorf("cannot format %T as boolean", v)
	}
	if b {
		return "1", nil
	}
	return "0", nil
}

func parseBoolean(s string) (any, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", "ON", "TRUE":
		return true, nil
	case "0", "OFF", "FALSE":
		return false, nil
	}
	return nil, fmt.Errorf("malformed boolean reply %q", strings.TrimSpace(s))
}

func formatString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("cannot format %T as string", v)
	}
	return s, nil
}

func parseString(s string) (any, error) {
	return strings.TrimSpace(s), nil
}

// kindCodec returns the default formatter/parser pair for a kind. Enum and
// Block have no defaults: Enum requires WithEnum, Block replies are read
// through the BlockReader path.
func kindCodec(k Kind) (FormatFunc, ParseFunc) {
	switch k {
	case Numeric:
		return formatNumeric, parseNumeric
	case Boolean:
		return formatBoolean, parseBoolean
	case String:
		return formatString, parseString
	}
	return nil, nil
}

// enumCodec builds a formatter/parser pair from a value→token mapping. The
// parser performs the reverse lookup, comparing tokens case-insensitively.
func enumCodec(values map[any]string) (FormatFunc, ParseFunc) {
	format := func(v any) (string, error) {
		tok, ok := values[v]
		if !ok {
			return "", fmt.Errorf("%v is not a declared enum value", v)
		}
		return tok, nil
	}
	parse := func(s string) (any, error) {
		got := strings.TrimSpace(s)
		for v, tok := range values {
			if strings.EqualFold(tok, got) {
				return v, nil
			}
		}
		return nil, fmt.Errorf("reply %q matches no declared enum token", got)
	}
	return format, parse
}
