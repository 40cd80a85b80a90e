// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package scpi

// Adapter abstracts the transport carrying a request-response conversation
// with one instrument: a serial line, a TCP socket, a GPIB controller, or a
// scripted test double. An Adapter performs blocking I/O and is not safe for
// concurrent use without external serialization; the request-response pairing
// carries no correlation identifier.
//
// Transport failures are reported as *CommError. After a timeout the state of
// the underlying connection is undefined and callers are expected to
// reconnect.
type Adapter interface {
	// Write sends one command. The adapter appends its configured write
	// terminator.
	Write(cmd string) error

	// Read reads one response, up to the configured read terminator, which is
	// stripped along with any trailing carriage return.
	Read() (string, error)

	// Query writes the command and reads the response as one logical
	// transaction.
	Query(cmd string) (string, error)

	// Close releases the transport.
	Close() error
}

// BlockReader is implemented by adapters that can read binary block replies
// (IEEE 488.2 definite-length blocks) in addition to line-terminated text.
type BlockReader interface {
	// QueryBlock writes the command and reads back one framed binary block,
	// returned with its framing intact. Use package block to decode it.
	QueryBlock(cmd string) ([]byte, error)
}
