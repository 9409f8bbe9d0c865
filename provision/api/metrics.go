// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/absmach/fieldsim/provision"
	"github.com/go-kit/kit/metrics"
)

var _ provision.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     provision.Service
}

// MetricsMiddleware instruments core service by tracking request count and latency.
func MetricsMiddleware(svc provision.Service, counter metrics.Counter, latency metrics.Histogram) provision.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Provision(ctx context.Context) (provision.Result, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "provision").Add(1)
		mm.latency.With("method", "provision").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Provision(ctx)
}
