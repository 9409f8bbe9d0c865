// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package simulator

import "sync"

const (
	minSeed = 50
	maxSeed = 70
)

// Trends holds the simulated soil moisture of every sensor, keyed by
// device name. It lives in process memory only.
type Trends struct {
	mu     sync.Mutex
	values map[string]float64
}

// NewTrends returns an empty trend table.
func NewTrends() *Trends {
	return &Trends{values: make(map[string]float64)}
}

// Seed starts the trend of a sensor at a random whole value in [50, 70].
func (t *Trends) Seed(name string, r Rand) float64 {
	v := float64(minSeed + r.IntN(maxSeed-minSeed+1))
	t.Set(name, v)

	return v
}

// Get returns the current trend of a sensor.
func (t *Trends) Get(name string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[name]

	return v, ok
}

// Set replaces the trend of a sensor.
func (t *Trends) Set(name string, v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[name] = v
}

// Advance moves the trend of a sensor one tick forward and returns the
// reading for it. Sensors without a trend start from DefaultMoisture.
func (t *Trends) Advance(name string, r Rand) MoistureReading {
	prev, ok := t.Get(name)
	if !ok {
		prev = DefaultMoisture
	}
	next, reading := NextMoisture(r, prev)
	t.Set(name, next)

	return reading
}

// Len returns the number of tracked sensors.
func (t *Trends) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.values)
}
