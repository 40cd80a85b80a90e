// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package asrl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilters(t *testing.T) {
	port := PortInfo{
		Device:       "ttyUSB0",
		VendorID:     "0403",
		ProductID:    "6001",
		Manufacturer: "FTDI",
		Product:      "FT232R USB UART",
		Serial:       "A600eXYZ",
	}

	assert.True(t, BySerial("A600eXYZ")(&port))
	assert.False(t, BySerial("other")(&port))

	assert.True(t, ByManufacturer("FTDI")(&port))
	assert.True(t, ByManufacturer("FT")(&port), "substring match")
	assert.False(t, ByManufacturer("Prolific")(&port))

	assert.True(t, ByProduct("UART")(&port))
	assert.False(t, ByProduct("CDC")(&port))
}

func TestPortInfoString(t *testing.T) {
	port := PortInfo{
		Device:    "ttyACM0",
		VendorID:  "2341",
		ProductID: "0043",
		Serial:    "95530343834351A0A091",
	}
	s := port.String()
	assert.Contains(t, s, "ttyACM0")
	assert.Contains(t, s, "2341/0043")
	assert.Contains(t, s, "95530343834351A0A091")
}
