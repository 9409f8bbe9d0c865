// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/simulator"
	"github.com/go-kit/kit/metrics"
)

const (
	sent   = "sent"
	failed = "failed"
)

var _ simulator.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	sends   metrics.Counter
	svc     simulator.Service
}

// MetricsMiddleware instruments the simulation service by tracking request
// count, latency and the outcome of every telemetry send.
func MetricsMiddleware(svc simulator.Service, counter metrics.Counter, latency metrics.Histogram, sends metrics.Counter) simulator.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		sends:   sends,
		svc:     svc,
	}
}

func (ms *metricsMiddleware) SimulateDevice(ctx context.Context, d simulator.Device) (payload sdk.Telemetry, err error) {
	defer func(begin time.Time) {
		ms.counter.With("method", "simulate_device").Add(1)
		ms.latency.With("method", "simulate_device").Observe(time.Since(begin).Seconds())
		ms.sends.With("kind", "device", "outcome", outcome(err)).Add(1)
	}(time.Now())

	return ms.svc.SimulateDevice(ctx, d)
}

func (ms *metricsMiddleware) SimulateField(ctx context.Context, f simulator.Field) (report simulator.FieldReport, err error) {
	defer func(begin time.Time) {
		ms.counter.With("method", "simulate_field").Add(1)
		ms.latency.With("method", "simulate_field").Observe(time.Since(begin).Seconds())
		ms.sends.With("kind", "field", "outcome", outcome(err)).Add(1)
	}(time.Now())

	return ms.svc.SimulateField(ctx, f)
}

func outcome(err error) string {
	if err != nil {
		return failed
	}
	return sent
}
