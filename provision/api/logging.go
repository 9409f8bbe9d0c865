// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/absmach/fieldsim/logger"
	"github.com/absmach/fieldsim/provision"
)

var _ provision.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger logger.Logger
	svc    provision.Service
}

// LoggingMiddleware adds logging facilities to the core service.
func LoggingMiddleware(svc provision.Service, logger logger.Logger) provision.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) Provision(ctx context.Context) (res provision.Result, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method provision for %d profiles, %d fields, %d devices and %d new relations took %s to complete", len(res.Profiles), len(res.Fields), len(res.Devices), res.Relations, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors", message))
	}(time.Now())

	return lm.svc.Provision(ctx)
}
