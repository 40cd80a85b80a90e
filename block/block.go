// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package block decodes the binary reply framings used by instruments:
// IEEE 488.2 definite-length blocks (#<n><length><data>) and the older
// checksummed Tektronix pack framing found on GPIB-era scopes.
package block

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// DecodeIEEE strips the framing from an IEEE 488.2 definite-length block
// and returns the payload. Trailing bytes after the declared length, such
// as a line terminator, are ignored.
func DecodeIEEE(b []byte) ([]byte, error) {
	if len(b) < 2 {
		return nil, io.ErrUnexpectedEOF
	}
	if b[0] != '#' {
		return nil, fmt.Errorf("invalid block header: want '#', got %q", b[0])
	}
	n := int(b[1] - '0')
	if n < 1 || n > 9 {
		return nil, fmt.Errorf("invalid block length digit %q", b[1])
	}
	if len(b) < 2+n {
		return nil, io.ErrUnexpectedEOF
	}
	count, err := strconv.Atoi(string(b[2 : 2+n]))
	if err != nil {
		return nil, fmt.Errorf("invalid block length field %q", b[2:2+n])
	}
	data := b[2+n:]
	if len(data) < count {
		return nil, fmt.Errorf("short block: declared %d bytes, got %d", count, len(data))
	}
	return data[:count], nil
}

// ReadIEEE reads exactly one definite-length block from r and returns it
// with its framing intact, for later decoding with DecodeIEEE. A trailing
// line terminator, if present, is consumed.
func ReadIEEE(r *bufio.Reader) ([]byte, error) {
	hdr := make([]byte, 2)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	if hdr[0] != '#' {
		return nil, fmt.Errorf("invalid block header: want '#', got %q", hdr[0])
	}
	n := int(hdr[1] - '0')
	if n < 1 || n > 9 {
		return nil, fmt.Errorf("invalid block length digit %q", hdr[1])
	}
	lenField := make([]byte, n)
	if _, err := io.ReadFull(r, lenField); err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(string(lenField))
	if err != nil {
		return nil, fmt.Errorf("invalid block length field %q", lenField)
	}
	data := make([]byte, count)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	// Consume the terminator the instrument appends after the block, if any.
	if c, err := r.ReadByte(); err == nil && c != '\n' && c != '\r' {
		_ = r.UnreadByte()
	}
	out := make([]byte, 0, 2+n+count)
	out = append(out, hdr...)
	out = append(out, lenField...)
	out = append(out, data...)
	return out, nil
}

// Uint16s decodes the payload as consecutive 16-bit words.
func Uint16s(data []byte, order binary.ByteOrder) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("odd payload length %d", len(data))
	}
	words := make([]uint16, 0, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		words = append(words, order.Uint16(data[i:]))
	}
	return words, nil
}

// Floats widens a payload of unsigned bytes, the scope waveform BYTE
// format, into floats for downstream scaling.
func Floats(data []byte) []float64 {
	vals := make([]float64, len(data))
	for i, b := range data {
		vals[i] = float64(b)
	}
	return vals
}

// DecodeTekPack decodes the checksummed Tektronix pack framing: a '%'
// header, a big-endian 16-bit count, big-endian 16-bit data words, a
// modulo-256 checksum over count and data, and a ';' trailer.
func DecodeTekPack(pack []byte) ([]uint16, error) {
	if len(pack) < 5 {
		return nil, io.ErrUnexpectedEOF
	}
	if pack[0] != '%' {
		return nil, fmt.Errorf("invalid pack header: want %%, got %q", pack[0])
	}
	count := int(pack[1])<<8 + int(pack[2])
	if len(pack) != count+4 {
		return nil, fmt.Errorf("invalid pack length: declared %d, got %d", count+4, len(pack))
	}
	if pack[len(pack)-1] != ';' {
		return nil, fmt.Errorf("invalid pack trailer: want ';', got %q", pack[len(pack)-1])
	}
	dataEnd := len(pack) - 2
	if err := tekChecksum(pack[1:dataEnd], pack[dataEnd]); err != nil {
		return nil, err
	}
	return Uint16s(pack[3:dataEnd], binary.BigEndian)
}

// tekChecksum verifies the 2's-complement modulo-256 sum of the preceding
// bytes.
func tekChecksum(data []byte, expect byte) error {
	s := int(expect)
	for _, c := range data {
		s += int(c)
	}
	if s&0xff != 0 {
		return fmt.Errorf("bad pack checksum %#02x", s&0xff)
	}
	return nil
}
