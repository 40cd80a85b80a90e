// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ds1000z

import (
	"testing"

	"github.com/gotmc/scpi/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSetup(t *testing.T) {
	adapter := sim.New(
		sim.Exchange{Cmd: ":CHAN1:DISP 1"},
		sim.Exchange{Cmd: ":CHAN1:PROB 10.0"},
		sim.Exchange{Cmd: ":CHAN1:SCAL 0.5"},
		sim.Exchange{Cmd: ":CHAN1:COUP DC"},
	)
	d, err := New(adapter)
	require.NoError(t, err)

	ch1, err := d.Channel("1")
	require.NoError(t, err)
	require.NoError(t, ch1.Set("display", true))
	require.NoError(t, ch1.Set("probe", 10.0))
	require.NoError(t, ch1.Set("scale", 0.5))
	require.NoError(t, ch1.Set("coupling", "dc"))

	assert.NoError(t, adapter.Done())
}

func TestProbeSnapsToNearestFactor(t *testing.T) {
	adapter := sim.New(
		sim.Exchange{Cmd: ":CHAN2:PROB 10.0"},
	)
	d, err := New(adapter)
	require.NoError(t, err)

	ch2, err := d.Channel("2")
	require.NoError(t, err)
	// 8x is not a hardware step; the nearest factor wins.
	require.NoError(t, ch2.Set("probe", 8.0))
	assert.NoError(t, adapter.Done())
}

func TestTriggerProperties(t *testing.T) {
	adapter := sim.New(
		sim.Exchange{Cmd: ":TRIG:MODE EDGE"},
		sim.Exchange{Cmd: ":TRIG:EDG:SLOP NEG"},
		sim.Exchange{Cmd: ":TRIG:EDG:LEV 0.1"},
		sim.Exchange{Cmd: ":TRIG:STAT?", Resp: "STOP"},
	)
	d, err := New(adapter)
	require.NoError(t, err)

	require.NoError(t, d.Set("trigger_mode", "edge"))
	require.NoError(t, d.Set("trigger_edge_slope", "falling"))
	require.NoError(t, d.Set("trigger_edge_level", 0.1))

	status, err := d.GetString("trigger_status")
	require.NoError(t, err)
	assert.Equal(t, "STOP", status)
	assert.NoError(t, adapter.Done())
}

func TestEnabledChannels(t *testing.T) {
	adapter := sim.New(
		sim.Exchange{Cmd: ":CHAN1:DISP?", Resp: "1"},
		sim.Exchange{Cmd: ":CHAN2:DISP?", Resp: "0"},
		sim.Exchange{Cmd: ":CHAN3:DISP?", Resp: "0"},
		sim.Exchange{Cmd: ":CHAN4:DISP?", Resp: "1"},
	)
	d, err := New(adapter)
	require.NoError(t, err)

	on, err := d.EnabledChannels()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false, true}, on)
	assert.NoError(t, adapter.Done())
}

func TestWaveform(t *testing.T) {
	adapter := sim.New(
		sim.Exchange{Cmd: ":WAV:SOUR CHAN1"},
		sim.Exchange{Cmd: ":WAV:MODE NORM"},
		sim.Exchange{Cmd: ":WAV:FORM BYTE"},
		sim.Exchange{Cmd: ":WAV:DATA?", Resp: "#15hello"},
	)
	d, err := New(adapter)
	require.NoError(t, err)

	data, err := d.Waveform("CHAN1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.NoError(t, adapter.Done())
}

func TestWaveformVolts(t *testing.T) {
	adapter := sim.New(
		sim.Exchange{Cmd: ":WAV:SOUR CHAN1"},
		sim.Exchange{Cmd: ":WAV:MODE NORM"},
		sim.Exchange{Cmd: ":WAV:FORM BYTE"},
		sim.Exchange{Cmd: ":WAV:DATA?", Resp: "#13" + string([]byte{127, 128, 129})},
		sim.Exchange{Cmd: ":WAV:PRE?", Resp: "0,0,3,1,1.0E-6,0.0,0,4.0E-2,2.0,125"},
	)
	d, err := New(adapter)
	require.NoError(t, err)

	volts, err := d.WaveformVolts("CHAN1")
	require.NoError(t, err)
	require.Len(t, volts, 3)
	// volts = (sample - yorig - yref) * yinc with yinc 0.04, yorig 2, yref 125.
	assert.InDelta(t, 0.0, volts[0], 1e-12)
	assert.InDelta(t, 0.04, volts[1], 1e-12)
	assert.InDelta(t, 0.08, volts[2], 1e-12)
	assert.NoError(t, adapter.Done())
}

func TestAcquisitionControls(t *testing.T) {
	adapter := sim.New(
		sim.Exchange{Cmd: ":RUN"},
		sim.Exchange{Cmd: ":STOP"},
		sim.Exchange{Cmd: ":SING"},
	)
	d, err := New(adapter)
	require.NoError(t, err)

	require.NoError(t, d.Run())
	require.NoError(t, d.Stop())
	require.NoError(t, d.Single())
	assert.NoError(t, adapter.Done())
}
