// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package testsutil

import (
	"strings"
	"sync"

	"github.com/go-kit/kit/metrics"
)

var _ metrics.Counter = (*Counter)(nil)

// Counter is a metrics.Counter whose labelled children add to totals
// kept by the root counter.
type Counter struct {
	mu     *sync.Mutex
	totals map[string]float64
	labels []string
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{mu: &sync.Mutex{}, totals: make(map[string]float64)}
}

func (c *Counter) With(labelValues ...string) metrics.Counter {
	labels := append(append([]string{}, c.labels...), labelValues...)
	return &Counter{mu: c.mu, totals: c.totals, labels: labels}
}

func (c *Counter) Add(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals[strings.Join(c.labels, ",")] += delta
}

// Value returns the total added with exactly the given label values.
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals[strings.Join(labelValues, ",")]
}

// Total returns the sum over every label set.
func (c *Counter) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, v := range c.totals {
		total += v
	}
	return total
}
