// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package block

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIEEE(t *testing.T) {
	tests := []struct {
		name        string
		in          []byte
		want        []byte
		expectError bool
	}{
		{name: "short payload", in: []byte("#15hello"), want: []byte("hello")},
		{name: "trailing newline ignored", in: []byte("#15hello\n"), want: []byte("hello")},
		{name: "rigol style header", in: append([]byte("#9000000003"), 1, 2, 3), want: []byte{1, 2, 3}},
		{name: "empty block", in: []byte("#10"), want: []byte{}},
		{name: "missing hash", in: []byte("15hello"), expectError: true},
		{name: "bad length digit", in: []byte("#a5hello"), expectError: true},
		{name: "truncated data", in: []byte("#15hel"), expectError: true},
		{name: "too short", in: []byte("#"), expectError: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeIEEE(tc.in)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadIEEE(t *testing.T) {
	// Framing is preserved and the trailing terminator consumed.
	r := bufio.NewReader(bytes.NewReader([]byte("#15hello\nrest")))
	b, err := ReadIEEE(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("#15hello"), b)

	next, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('r'), next, "only the terminator is consumed after the block")

	_, err = ReadIEEE(bufio.NewReader(bytes.NewReader([]byte("#15he"))))
	assert.Error(t, err, "short stream must fail")
}

func TestUint16s(t *testing.T) {
	got, err := Uint16s([]byte{0x01, 0x02, 0x03, 0x04}, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0102, 0x0304}, got)

	got, err = Uint16s([]byte{0x01, 0x02}, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0201}, got)

	_, err = Uint16s([]byte{0x01}, binary.BigEndian)
	assert.Error(t, err)
}

func TestFloats(t *testing.T) {
	assert.Equal(t, []float64{0, 127, 255}, Floats([]byte{0, 127, 255}))
}

// tekPack builds a valid checksummed pack around the given data words.
func tekPack(t *testing.T, words []uint16) []byte {
	t.Helper()
	data := make([]byte, 0, len(words)*2)
	for _, w := range words {
		data = append(data, byte(w>>8), byte(w))
	}
	count := len(data) + 1 // count covers data plus the checksum byte
	pack := []byte{'%', byte(count >> 8), byte(count)}
	pack = append(pack, data...)
	sum := 0
	for _, b := range pack[1:] {
		sum += int(b)
	}
	pack = append(pack, byte(-sum&0xff), ';')
	return pack
}

func TestDecodeTekPack(t *testing.T) {
	words := []uint16{0x0102, 0x0304, 512}
	got, err := DecodeTekPack(tekPack(t, words))
	require.NoError(t, err)
	assert.Equal(t, words, got)
}

func TestDecodeTekPackErrors(t *testing.T) {
	good := tekPack(t, []uint16{7, 9})

	bad := append([]byte(nil), good...)
	bad[0] = '#'
	_, err := DecodeTekPack(bad)
	assert.Error(t, err, "wrong header")

	bad = append([]byte(nil), good...)
	bad[4] ^= 0xff
	_, err = DecodeTekPack(bad)
	assert.Error(t, err, "corrupted data must fail the checksum")

	bad = append([]byte(nil), good...)
	bad[len(bad)-1] = '!'
	_, err = DecodeTekPack(bad)
	assert.Error(t, err, "wrong trailer")

	_, err = DecodeTekPack([]byte{'%', 0})
	assert.Error(t, err, "truncated pack")
}
