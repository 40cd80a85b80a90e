// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package visa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		res         string
		want        resource
		expectError bool
	}{
		{
			res:  "TCPIP::192.168.1.45::5025::SOCKET",
			want: resource{kind: "TCPIP", addr: "192.168.1.45:5025"},
		},
		{
			res:  "TCPIP0::scope.local::5555::socket",
			want: resource{kind: "TCPIP", addr: "scope.local:5555"},
		},
		{
			res:  "TCPIP::192.168.1.45::INSTR",
			want: resource{kind: "VXI11", addr: "192.168.1.45", lan: "inst0"},
		},
		{
			res:  "TCPIP0::scope.local::inst0::INSTR",
			want: resource{kind: "VXI11", addr: "scope.local", lan: "inst0"},
		},
		{
			res:  "ASRL::/dev/ttyUSB0::INSTR",
			want: resource{kind: "ASRL", addr: "/dev/ttyUSB0"},
		},
		{
			res:  "asrl::/dev/ttyUSB0::9600::instr",
			want: resource{kind: "ASRL", addr: "/dev/ttyUSB0", baud: 9600},
		},
		{
			res:  "PROLOGIX::/dev/ttyACM0::22::INSTR",
			want: resource{kind: "PROLOGIX", addr: "/dev/ttyACM0", pad: 22},
		},
		{res: "TCPIP::192.168.1.45::SOCKET", expectError: true},
		{res: "TCPIP::192.168.1.45::abc::SOCKET", expectError: true},
		{res: "TCPIP::192.168.1.45", expectError: true},
		{res: "ASRL::/dev/ttyUSB0", expectError: true},
		{res: "ASRL::/dev/ttyUSB0::fast::INSTR", expectError: true},
		{res: "PROLOGIX::/dev/ttyACM0::INSTR", expectError: true},
		{res: "GPIB0::22::INSTR", expectError: true},
		{res: "nonsense", expectError: true},
	}
	for _, tc := range tests {
		t.Run(tc.res, func(t *testing.T) {
			got, err := parse(tc.res)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOpenRejectsMalformedResource(t *testing.T) {
	_, err := Open("GPIB0::22::INSTR")
	assert.Error(t, err)
}
