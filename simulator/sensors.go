// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"math"
	"strconv"

	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
)

const (
	minMoisture = 30.0
	maxMoisture = 90.0

	// Below this value a sensor may see an irrigation pulse.
	pulseThreshold   = 45.0
	pulseProbability = 0.3

	minBattery = 75
	maxBattery = 100

	maxPulses = 100
)

// MoistureReading is a soil-moisture sensor sample.
type MoistureReading struct {
	Moisture float64 `json:"moisture"`
	Battery  int     `json:"battery"`
}

// Telemetry returns the reading as a flat sample.
func (r MoistureReading) Telemetry() sdk.Telemetry {
	return sdk.Telemetry{"moisture": r.Moisture, "battery": r.Battery}
}

// MeterReading is a water meter sample. PulseCounter counts the pulses
// since the previous sample.
type MeterReading struct {
	PulseCounter int `json:"pulseCounter"`
	Battery      int `json:"battery"`
}

// Telemetry returns the reading as a flat sample.
func (r MeterReading) Telemetry() sdk.Telemetry {
	return sdk.Telemetry{"pulseCounter": r.PulseCounter, "battery": r.Battery}
}

// ValveReading is a smart valve sample.
type ValveReading struct {
	Battery int `json:"battery"`
}

// Telemetry returns the reading as a flat sample.
func (r ValveReading) Telemetry() sdk.Telemetry {
	return sdk.Telemetry{"battery": r.Battery}
}

// NextMoisture advances a moisture trend by one tick. The value drifts by
// up to 2 points and is kept within [30, 90]. A dry sensor occasionally
// sees an irrigation pulse of 5 to 15 points which is not clamped, so the
// returned state may exceed 90.
func NextMoisture(r Rand, prev float64) (float64, MoistureReading) {
	next := clamp(prev+uniform(r, -2, 2), minMoisture, maxMoisture)
	if next < pulseThreshold && r.Float64() > 1-pulseProbability {
		next += uniform(r, 5, 15)
	}

	return next, MoistureReading{
		Moisture: round(next),
		Battery:  battery(r),
	}
}

// NextMeter returns a water meter sample.
func NextMeter(r Rand) MeterReading {
	return MeterReading{
		PulseCounter: r.IntN(maxPulses + 1),
		Battery:      battery(r),
	}
}

// NextValve returns a smart valve sample.
func NextValve(r Rand) ValveReading {
	return ValveReading{Battery: battery(r)}
}

func battery(r Rand) int {
	return minBattery + r.IntN(maxBattery-minBattery+1)
}

func uniform(r Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round rounds the exact binary value to one decimal place, so that a
// mean such as 80.05, stored just below the tie, rounds down.
func round(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}

	return r
}
