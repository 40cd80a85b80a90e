// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package validate provides pure value validators for command properties.
// A validator checks or coerces a value against its permitted domain before
// the value is serialized onto the wire; a rejected value never reaches the
// instrument. The coercion policy (fail, clip, or nearest) is always chosen
// explicitly by the property declaration, never implied.
package validate

import (
	"fmt"
	"math"
)

// Func checks v against a permitted domain and returns the value to send,
// which may be a coerced form of v.
type Func func(v any) (any, error)

// Range returns a strict range validator: values inside [min, max] pass
// unchanged, values outside fail.
func Range(min, max float64) Func {
	return func(v any) (any, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if f < min || f > max {
			return nil, fmt.Errorf("%v outside permitted range [%v, %v]", v, min, max)
		}
		return v, nil
	}
}

// TruncatedRange returns a validator that silently clips values to
// [min, max] instead of failing.
func TruncatedRange(min, max float64) Func {
	return func(v any) (any, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if f < min {
			return min, nil
		}
		if f > max {
			return max, nil
		}
		return v, nil
	}
}

// Set returns a strict discrete-set validator: only exact members of the
// allowed set pass, unchanged.
func Set(allowed ...any) Func {
	return func(v any) (any, error) {
		for _, a := range allowed {
			if a == v {
				return v, nil
			}
		}
		return nil, fmt.Errorf("%v not in the permitted set %v", v, allowed)
	}
}

// NearestInSet returns a validator that coerces a numeric value to the
// closest allowed step, for instruments that accept only enumerated steps
// (amplifier gains, probe attenuation factors). An exact tie breaks to the
// lower allowed value, so the choice is deterministic.
func NearestInSet(allowed ...float64) Func {
	steps := append([]float64(nil), allowed...)
	return func(v any) (any, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if len(steps) == 0 {
			return nil, fmt.Errorf("empty step set")
		}
		best := steps[0]
		diff := math.Abs(f - best)
		for _, s := range steps[1:] {
			d := math.Abs(f - s)
			if d < diff || (d == diff && s < best) {
				best, diff = s, d
			}
		}
		return best, nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%T is not a numeric value", v)
}
