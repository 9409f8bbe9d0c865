// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/absmach/fieldsim/logger"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/simulator"
)

var _ simulator.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger logger.Logger
	svc    simulator.Service
}

// LoggingMiddleware adds logging facilities to the simulation service.
func LoggingMiddleware(svc simulator.Service, logger logger.Logger) simulator.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) SimulateDevice(ctx context.Context, d simulator.Device) (payload sdk.Telemetry, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Device %s (%s) %s took %s to complete", d.Name, d.Type, formatTelemetry(payload), time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors", message))
	}(time.Now())

	return lm.svc.SimulateDevice(ctx, d)
}

func (lm *loggingMiddleware) SimulateField(ctx context.Context, f simulator.Field) (report simulator.FieldReport, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Field %s avgMoisture=%.1f over %d sensors, %s (%s), waterConsumption=%d took %s to complete", f.Name, report.AvgMoisture, report.Sensors, report.IrrigationState, report.IrrigationTask, report.WaterConsumption, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors", message))
	}(time.Now())

	return lm.svc.SimulateField(ctx, f)
}

// formatTelemetry renders a sample as key=value pairs in key order.
func formatTelemetry(t sdk.Telemetry) string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, t[k]))
	}

	return strings.Join(pairs, " ")
}
