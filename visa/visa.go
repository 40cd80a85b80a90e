// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package visa opens adapters from VISA-style resource strings, so one
// configuration value can select the transport:
//
//	TCPIP::192.168.1.45::5025::SOCKET      raw SCPI over TCP
//	TCPIP::192.168.1.45::INSTR             VXI-11 RPC, default lan device
//	TCPIP::192.168.1.45::inst0::INSTR      VXI-11 RPC, named lan device
//	ASRL::/dev/ttyUSB0::INSTR              serial, default framing
//	ASRL::/dev/ttyUSB0::9600::INSTR        serial at a given baud rate
//	PROLOGIX::/dev/ttyACM0::22::INSTR      GPIB address 22 via a Prologix
//	                                       controller on the given port
//
// The PROLOGIX form is an extension; a native GPIB:: resource would need a
// bus controller this library does not talk to directly.
package visa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gotmc/scpi"
	"github.com/gotmc/scpi/asrl"
	"github.com/gotmc/scpi/prologix"
	"github.com/gotmc/scpi/tcpip"
	"github.com/gotmc/scpi/vxi11"
)

type resource struct {
	kind string // "TCPIP", "VXI11", "ASRL", "PROLOGIX"
	addr string // host:port, host, or device path
	lan  string // VXI11 only; lan device name, e.g. inst0
	baud int    // ASRL only; 0 means default
	pad  int    // PROLOGIX only
}

// Open parses the resource string and opens the matching adapter.
func Open(res string) (scpi.Adapter, error) {
	r, err := parse(res)
	if err != nil {
		return nil, err
	}
	switch r.kind {
	case "TCPIP":
		return tcpip.Dial(r.addr)
	case "VXI11":
		return vxi11.Dial(fmt.Sprintf("TCPIP0::%s::%s::INSTR", r.addr, r.lan))
	case "ASRL":
		if r.baud > 0 {
			return asrl.Open(r.addr, asrl.WithBaudRate(r.baud))
		}
		return asrl.Open(r.addr)
	case "PROLOGIX":
		port, err := asrl.OpenPort(r.addr)
		if err != nil {
			return nil, err
		}
		gpib, err := prologix.New(port, r.pad, false)
		if err != nil {
			_ = port.Close()
			return nil, err
		}
		return gpib, nil
	}
	return nil, fmt.Errorf("visa: unsupported resource class %q", r.kind)
}

func parse(res string) (resource, error) {
	fields := strings.Split(res, "::")
	if len(fields) < 2 {
		return resource{}, fmt.Errorf("visa: malformed resource %q", res)
	}
	kind := strings.ToUpper(fields[0])
	// Strip an interface number suffix such as TCPIP0.
	kind = strings.TrimRight(kind, "0123456789")
	switch kind {
	case "TCPIP":
		// TCPIP::host::port::SOCKET, or the VXI-11 forms
		// TCPIP::host::INSTR and TCPIP::host::landevice::INSTR.
		switch {
		case len(fields) == 4 && strings.EqualFold(fields[3], "SOCKET"):
			if _, err := strconv.Atoi(fields[2]); err != nil {
				return resource{}, fmt.Errorf("visa: bad port in %q", res)
			}
			return resource{kind: kind, addr: fields[1] + ":" + fields[2]}, nil
		case len(fields) == 3 && strings.EqualFold(fields[2], "INSTR"):
			return resource{kind: "VXI11", addr: fields[1], lan: "inst0"}, nil
		case len(fields) == 4 && strings.EqualFold(fields[3], "INSTR"):
			return resource{kind: "VXI11", addr: fields[1], lan: fields[2]}, nil
		}
		return resource{}, fmt.Errorf("visa: malformed TCPIP resource %q", res)
	case "ASRL":
		// ASRL::device[::baud]::INSTR
		if len(fields) < 3 || len(fields) > 4 || !strings.EqualFold(fields[len(fields)-1], "INSTR") {
			return resource{}, fmt.Errorf("visa: malformed ASRL resource %q", res)
		}
		r := resource{kind: kind, addr: fields[1]}
		if len(fields) == 4 {
			baud, err := strconv.Atoi(fields[2])
			if err != nil || baud <= 0 {
				return resource{}, fmt.Errorf("visa: bad baud rate in %q", res)
			}
			r.baud = baud
		}
		return r, nil
	case "PROLOGIX":
		// PROLOGIX::device::pad::INSTR
		if len(fields) != 4 || !strings.EqualFold(fields[3], "INSTR") {
			return resource{}, fmt.Errorf("visa: malformed PROLOGIX resource %q", res)
		}
		pad, err := strconv.Atoi(fields[2])
		if err != nil {
			return resource{}, fmt.Errorf("visa: bad GPIB address in %q", res)
		}
		return resource{kind: kind, addr: fields[1], pad: pad}, nil
	}
	return resource{}, fmt.Errorf("visa: unsupported resource class %q", fields[0])
}
