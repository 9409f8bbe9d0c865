// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/absmach/fieldsim/diagnostics"
	"github.com/absmach/fieldsim/logger"
)

var _ diagnostics.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger logger.Logger
	svc    diagnostics.Service
}

// LoggingMiddleware adds logging facilities to the diagnostics service.
func LoggingMiddleware(svc diagnostics.Service, logger logger.Logger) diagnostics.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) Diagnose(ctx context.Context) (report diagnostics.Report, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method diagnose found %d issues and %d warnings in %d checks and took %s to complete", len(report.Issues()), len(report.Warnings()), len(report.Checks), time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors", message))
	}(time.Now())

	return lm.svc.Diagnose(ctx)
}
