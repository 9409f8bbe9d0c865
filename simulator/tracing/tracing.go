// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"context"

	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/simulator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ simulator.Service = (*tracingMiddleware)(nil)

type tracingMiddleware struct {
	tracer trace.Tracer
	svc    simulator.Service
}

// New returns a new simulation service with tracing capabilities.
func New(svc simulator.Service, tracer trace.Tracer) simulator.Service {
	return &tracingMiddleware{tracer, svc}
}

// SimulateDevice traces the "SimulateDevice" operation of the wrapped simulator.Service.
func (tm *tracingMiddleware) SimulateDevice(ctx context.Context, d simulator.Device) (sdk.Telemetry, error) {
	ctx, span := tm.tracer.Start(ctx, "svc_simulate_device", trace.WithAttributes(
		attribute.String("id", d.ID),
		attribute.String("name", d.Name),
		attribute.String("type", d.Type),
	))
	defer span.End()

	payload, err := tm.svc.SimulateDevice(ctx, d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return payload, err
}

// SimulateField traces the "SimulateField" operation of the wrapped simulator.Service.
func (tm *tracingMiddleware) SimulateField(ctx context.Context, f simulator.Field) (simulator.FieldReport, error) {
	ctx, span := tm.tracer.Start(ctx, "svc_simulate_field", trace.WithAttributes(
		attribute.String("id", f.ID),
		attribute.String("name", f.Name),
	))
	defer span.End()

	report, err := tm.svc.SimulateField(ctx, f)
	span.SetAttributes(
		attribute.Float64("avg_moisture", report.AvgMoisture),
		attribute.String("irrigation_state", string(report.IrrigationState)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return report, err
}
