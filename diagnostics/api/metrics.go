// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/absmach/fieldsim/diagnostics"
	"github.com/go-kit/kit/metrics"
)

var _ diagnostics.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     diagnostics.Service
}

// MetricsMiddleware instruments the diagnostics service by tracking request count and latency.
func MetricsMiddleware(svc diagnostics.Service, counter metrics.Counter, latency metrics.Histogram) diagnostics.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Diagnose(ctx context.Context) (diagnostics.Report, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "diagnose").Add(1)
		mm.latency.With("method", "diagnose").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Diagnose(ctx)
}
