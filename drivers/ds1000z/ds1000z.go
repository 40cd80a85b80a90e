// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package ds1000z drives Rigol DS1000Z / MSO1000Z series oscilloscopes over
// their raw SCPI socket (port 5555) or USB virtual COM port. The four
// analog inputs are modeled as channels sharing the scope's adapter; the
// per-channel commands carry the channel number in the :CHANn: header.
package ds1000z

import (
	"github.com/gotmc/query"
	"github.com/gotmc/scpi"
	"github.com/gotmc/scpi/block"
	"github.com/gotmc/scpi/validate"
	"github.com/pkg/errors"
)

// probeFactors are the attenuation steps the scope accepts.
var probeFactors = []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}

// Device is a DS1000Z-series scope on one adapter.
type Device struct {
	*scpi.Instrument
}

// New builds the scope's property table and channel group.
func New(a scpi.Adapter, opts ...scpi.Option) (*Device, error) {
	props := []scpi.Property{
		scpi.Control("timebase_scale", ":TIM:SCAL?", ":TIM:SCAL {value}",
			scpi.WithValidator(validate.Range(5e-9, 50))),
		scpi.Control("timebase_offset", ":TIM:OFFS?", ":TIM:OFFS {value}"),
		scpi.Control("trigger_mode", ":TRIG:MODE?", ":TRIG:MODE {value}",
			scpi.WithEnum(map[any]string{
				"edge":     "EDGE",
				"pulse":    "PULS",
				"slope":    "SLOP",
				"video":    "VID",
				"pattern":  "PATT",
				"duration": "DUR",
			})),
		scpi.Control("trigger_edge_slope", ":TRIG:EDG:SLOP?", ":TRIG:EDG:SLOP {value}",
			scpi.WithEnum(map[any]string{
				"rising":  "POS",
				"falling": "NEG",
				"either":  "RFAL",
			})),
		scpi.Control("trigger_edge_level", ":TRIG:EDG:LEV?", ":TRIG:EDG:LEV {value}"),
		scpi.Measurement("trigger_status", ":TRIG:STAT?",
			scpi.WithKind(scpi.String)),
	}
	chanProps := []scpi.Property{
		scpi.Control("display", ":CHAN{ch}:DISP?", ":CHAN{ch}:DISP {value}",
			scpi.WithKind(scpi.Boolean)),
		scpi.Control("scale", ":CHAN{ch}:SCAL?", ":CHAN{ch}:SCAL {value}",
			scpi.WithValidator(validate.Range(1e-3, 10))),
		scpi.Control("offset", ":CHAN{ch}:OFFS?", ":CHAN{ch}:OFFS {value}"),
		scpi.Control("probe", ":CHAN{ch}:PROB?", ":CHAN{ch}:PROB {value}",
			scpi.WithValidator(validate.NearestInSet(probeFactors...))),
		scpi.Control("coupling", ":CHAN{ch}:COUP?", ":CHAN{ch}:COUP {value}",
			scpi.WithEnum(map[any]string{
				"ac":  "AC",
				"dc":  "DC",
				"gnd": "GND",
			})),
	}
	inst, err := scpi.New(a, props, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "ds1000z property table")
	}
	if _, err := inst.NewChannelGroup([]string{"1", "2", "3", "4"}, chanProps...); err != nil {
		return nil, errors.Wrap(err, "ds1000z channel group")
	}
	return &Device{Instrument: inst}, nil
}

// ID returns the *IDN? identification string.
func (d *Device) ID() (string, error) {
	return query.String(d, "*IDN?")
}

// Run starts continuous acquisition.
func (d *Device) Run() error { return d.Write(":RUN") }

// Stop halts acquisition.
func (d *Device) Stop() error { return d.Write(":STOP") }

// Single arms a single acquisition.
func (d *Device) Single() error { return d.Write(":SING") }

// EnabledChannels reports the display state of all four inputs, aligned
// with Channels().
func (d *Device) EnabledChannels() ([]bool, error) {
	vals, err := d.GetAll("display")
	if err != nil {
		return nil, err
	}
	on := make([]bool, len(vals))
	for i, v := range vals {
		b, ok := v.(bool)
		if !ok {
			return nil, errors.Errorf("display reply %v is not boolean", v)
		}
		on[i] = b
	}
	return on, nil
}

// Waveform reads the raw sample bytes for the given source (e.g. CHAN1)
// from the sample currently on screen. Acquisition should be stopped first
// for a full-memory read.
func (d *Device) Waveform(source string) ([]byte, error) {
	setup := []string{
		":WAV:SOUR " + source,
		":WAV:MODE NORM",
		":WAV:FORM BYTE",
	}
	for _, cmd := range setup {
		if err := d.Write(cmd); err != nil {
			return nil, errors.Wrap(err, "waveform setup")
		}
	}
	framed, err := d.QueryBlock(":WAV:DATA?")
	if err != nil {
		return nil, errors.Wrap(err, "waveform read")
	}
	data, err := block.DecodeIEEE(framed)
	if err != nil {
		return nil, errors.Wrap(err, "waveform decode")
	}
	return data, nil
}

// WaveformVolts reads the given source and scales the samples to volts
// using the preamble's y increment, origin, and reference.
func (d *Device) WaveformVolts(source string) ([]float64, error) {
	raw, err := d.Waveform(source)
	if err != nil {
		return nil, err
	}
	pre, err := d.Values(":WAV:PRE?")
	if err != nil {
		return nil, errors.Wrap(err, "waveform preamble")
	}
	// Preamble fields: format, type, points, count, xinc, xorig, xref,
	// yinc, yorig, yref.
	if len(pre) < 10 {
		return nil, errors.Errorf("short preamble, got %d fields", len(pre))
	}
	yinc, yorig, yref := pre[7], pre[8], pre[9]
	volts := make([]float64, len(raw))
	for i, b := range raw {
		volts[i] = (float64(b) - yorig - yref) * yinc
	}
	return volts, nil
}
