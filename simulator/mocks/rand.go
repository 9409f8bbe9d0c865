// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"sync"

	"github.com/absmach/fieldsim/simulator"
)

var _ simulator.Rand = (*Rand)(nil)

// Rand replays scripted draws. Once a script runs out Float64 returns
// 0.5 and IntN returns 0.
type Rand struct {
	mu     sync.Mutex
	Floats []float64
	Ints   []int
}

// NewRand returns a random source replaying the given draws.
func NewRand(floats []float64, ints []int) *Rand {
	return &Rand{Floats: floats, Ints: ints}
}

func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Floats) == 0 {
		return 0.5
	}
	v := r.Floats[0]
	r.Floats = r.Floats[1:]

	return v
}

func (r *Rand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	if v >= n {
		return n - 1
	}

	return v
}
