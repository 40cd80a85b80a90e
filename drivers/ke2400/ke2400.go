// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package ke2400 drives a Keithley 2400 SourceMeter: a single-channel SMU
// that sources voltage or current and measures the other. The command set
// is documented in Keithley publication 2400S-900-01.
package ke2400

import (
	"fmt"
	"math"
	"strings"

	"github.com/gotmc/query"
	"github.com/gotmc/scpi"
	"github.com/gotmc/scpi/validate"
	"github.com/pkg/errors"
)

// Hardware range tables from the 2400 datasheet.
var (
	voltageRanges = []float64{0.2, 2, 20, 200}
	currentRanges = []float64{1e-6, 10e-6, 100e-6, 1e-3, 10e-3, 100e-3, 1}
)

// Device is a Keithley 2400 on one adapter.
type Device struct {
	*scpi.Instrument
}

// New builds the property table and binds it to the adapter.
func New(a scpi.Adapter, opts ...scpi.Option) (*Device, error) {
	props := []scpi.Property{
		scpi.Control("source_mode", "SOUR:FUNC?", "SOUR:FUNC {value}",
			scpi.WithEnum(map[any]string{
				"voltage": "VOLT",
				"current": "CURR",
			})),
		scpi.Control("source_voltage", "SOUR:VOLT?", "SOUR:VOLT {value}",
			scpi.WithValidator(validate.TruncatedRange(-210, 210))),
		scpi.Control("source_current", "SOUR:CURR?", "SOUR:CURR {value}",
			scpi.WithValidator(validate.TruncatedRange(-1.05, 1.05))),
		scpi.Control("compliance_current", "SENS:CURR:PROT?", "SENS:CURR:PROT {value}",
			scpi.WithValidator(validate.Range(-1.05, 1.05))),
		scpi.Control("compliance_voltage", "SENS:VOLT:PROT?", "SENS:VOLT:PROT {value}",
			scpi.WithValidator(validate.Range(-210, 210))),
		scpi.Control("current_nplc", "SENS:CURR:NPLC?", "SENS:CURR:NPLC {value}",
			scpi.WithValidator(validate.Range(0.01, 10))),
		scpi.Control("voltage_nplc", "SENS:VOLT:NPLC?", "SENS:VOLT:NPLC {value}",
			scpi.WithValidator(validate.Range(0.01, 10))),
		scpi.Control("output_enabled", "OUTP?", "OUTP {value}",
			scpi.WithKind(scpi.Boolean)),
		scpi.Control("four_wire", "SYST:RSEN?", "SYST:RSEN {value}",
			scpi.WithKind(scpi.Boolean)),
		scpi.Measurement("measured_voltage", "MEAS:VOLT?",
			scpi.WithParse(firstField)),
		scpi.Measurement("measured_current", "MEAS:CURR?",
			scpi.WithParse(secondField)),
	}
	inst, err := scpi.New(a, props, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "ke2400 property table")
	}
	return &Device{Instrument: inst}, nil
}

// Reset restores power-on defaults and clears the error queue.
func (d *Device) Reset() error {
	if err := d.Write("*RST"); err != nil {
		return err
	}
	return d.Write("*CLS")
}

// ID returns the *IDN? identification string.
func (d *Device) ID() (string, error) {
	return query.String(d, "*IDN?")
}

// Err pops one entry from the instrument's error queue and returns it as a
// Go error, or nil when the queue reports code 0.
func (d *Device) Err() error {
	s, err := query.String(d, "SYST:ERR?")
	if err != nil {
		return err
	}
	code := strings.SplitN(strings.TrimSpace(s), ",", 2)[0]
	if code == "0" || code == "+0" {
		return nil
	}
	return errors.Errorf("instrument error %s", strings.TrimSpace(s))
}

// ConfigureVoltageSource sets the instrument up to source a voltage and
// measure current, with the given compliance limit and integration time in
// power-line cycles. With fixedRange false both source and sense use
// autoranging; with it true the nearest covering ranges are selected, the
// way the front panel would.
func (d *Device) ConfigureVoltageSource(srcVoltage, limCurrent, nplc float64, fixedRange bool) error {
	cmds := []string{
		"SOUR:FUNC VOLT",
		"OUTP:SMOD ZERO",
		"SOUR:VOLT:PROT:LEV 210",
		"SOUR:DEL:AUTO ON",
		"SYST:AZER:STAT ONCE",
		`SENS:FUNC "CURR:DC"`,
	}
	if fixedRange {
		cmds = append(cmds,
			"SOUR:VOLT:MODE FIX",
			"SENS:CURR:DC:RANG:AUTO OFF",
			fmt.Sprintf("SOUR:VOLT:RANG %g", SuitableVoltageRange(srcVoltage)),
			fmt.Sprintf("SENS:CURR:DC:RANG %g", SuitableCurrentRange(limCurrent)),
		)
	} else {
		cmds = append(cmds,
			"SOUR:VOLT:MODE AUTO",
			"SENS:CURR:DC:RANG:AUTO ON",
		)
	}
	for _, cmd := range cmds {
		if err := d.Write(cmd); err != nil {
			return errors.Wrap(err, "voltage source init")
		}
	}
	if err := d.Set("source_voltage", srcVoltage); err != nil {
		return errors.Wrap(err, "voltage source init")
	}
	if err := d.Set("compliance_current", limCurrent); err != nil {
		return errors.Wrap(err, "voltage source init")
	}
	if err := d.Set("current_nplc", nplc); err != nil {
		return errors.Wrap(err, "voltage source init")
	}
	return nil
}

// ConfigureCurrentSource mirrors ConfigureVoltageSource with source and
// sense functions swapped.
func (d *Device) ConfigureCurrentSource(srcCurrent, limVoltage, nplc float64, fixedRange bool) error {
	cmds := []string{
		"SOUR:FUNC CURR",
		"OUTP:SMOD ZERO",
		"SOUR:DEL:AUTO ON",
		"SYST:AZER:STAT ONCE",
		`SENS:FUNC "VOLT:DC"`,
	}
	if fixedRange {
		cmds = append(cmds,
			"SOUR:CURR:MODE FIX",
			"SENS:VOLT:DC:RANG:AUTO OFF",
			fmt.Sprintf("SOUR:CURR:RANG %g", SuitableCurrentRange(srcCurrent)),
			fmt.Sprintf("SENS:VOLT:DC:RANG %g", SuitableVoltageRange(limVoltage)),
		)
	} else {
		cmds = append(cmds,
			"SOUR:CURR:MODE AUTO",
			"SENS:VOLT:DC:RANG:AUTO ON",
		)
	}
	for _, cmd := range cmds {
		if err := d.Write(cmd); err != nil {
			return errors.Wrap(err, "current source init")
		}
	}
	if err := d.Set("source_current", srcCurrent); err != nil {
		return errors.Wrap(err, "current source init")
	}
	if err := d.Set("compliance_voltage", limVoltage); err != nil {
		return errors.Wrap(err, "current source init")
	}
	if err := d.Set("voltage_nplc", nplc); err != nil {
		return errors.Wrap(err, "current source init")
	}
	return nil
}

// ReadData triggers a reading and returns the measured voltage and current.
// The :READ? reply is voltage, current, resistance, time, status.
func (d *Device) ReadData() (voltage, current float64, err error) {
	vals, err := d.Values(":READ?")
	if err != nil {
		return 0, 0, errors.Wrap(err, "data read")
	}
	if len(vals) < 2 {
		return 0, 0, errors.Errorf("short :READ? reply, got %d values", len(vals))
	}
	return vals[0], vals[1], nil
}

// SuitableVoltageRange returns the smallest hardware voltage range covering
// the target, or the largest range when nothing covers it.
func SuitableVoltageRange(target float64) float64 {
	return suitableRange(voltageRanges, target)
}

// SuitableCurrentRange returns the smallest hardware current range covering
// the target, or the largest range when nothing covers it.
func SuitableCurrentRange(target float64) float64 {
	return suitableRange(currentRanges, target)
}

// suitableRange assumes ranges is sorted ascending.
func suitableRange(ranges []float64, target float64) float64 {
	t := math.Abs(target)
	for _, r := range ranges {
		if t <= r {
			return r
		}
	}
	return ranges[len(ranges)-1]
}

// firstField and secondField parse one float out of the comma-separated
// MEAS? reply.
func firstField(s string) (any, error)  { return field(s, 0) }
func secondField(s string) (any, error) { return field(s, 1) }

func field(s string, i int) (any, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	if i >= len(fields) {
		return nil, errors.Errorf("reply %q has no field %d", s, i)
	}
	var f float64
	if _, err := fmt.Sscanf(strings.TrimSpace(fields[i]), "%g", &f); err != nil {
		return nil, errors.Wrapf(err, "field %d of %q", i, s)
	}
	return f, nil
}
