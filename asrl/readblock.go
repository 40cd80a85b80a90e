// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package asrl

import (
	"fmt"
	"strconv"
)

// readBlock assembles one IEEE 488.2 definite-length block from a transport
// whose Read reports an expired timeout as a zero-byte read, as
// go.bug.st/serial does. The framing is returned intact.
func readBlock(read func([]byte) (int, error)) ([]byte, error) {
	fill := func(p []byte) error {
		for off := 0; off < len(p); {
			n, err := read(p[off:])
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrTimeout
			}
			off += n
		}
		return nil
	}

	hdr := make([]byte, 2)
	if err := fill(hdr); err != nil {
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
	if err := fill(lenField); err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(string(lenField))
	if err != nil {
		return nil, fmt.Errorf("invalid block length field %q", lenField)
	}
	data := make([]byte, count)
	if err := fill(data); err != nil {
		return nil, err
	}
	// Swallow the terminator following the block, if the instrument sends
	// one; a timeout here is not an error.
	tail := make([]byte, 1)
	_, _ = read(tail)

	out := make([]byte, 0, 2+n+count)
	out = append(out, hdr...)
	out = append(out, lenField...)
	out = append(out, data...)
	return out, nil
}
