// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/absmach/fieldsim/diagnostics"
	"github.com/absmach/fieldsim/diagnostics/api"
	"github.com/absmach/fieldsim/internal/testsutil"
	"github.com/absmach/fieldsim/logger"
	"github.com/absmach/fieldsim/pkg/errors"
	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	report diagnostics.Report
	err    error
}

func (s stubService) Diagnose(context.Context) (diagnostics.Report, error) {
	return s.report, s.err
}

func TestMiddlewares(t *testing.T) {
	report := diagnostics.Report{Checks: []diagnostics.Check{
		{Name: diagnostics.DeviceProfilesCheck, Passed: []string{"SI Water Meter"}, Issues: []string{"Missing device profile: SI Smart Valve"}},
		{Name: diagnostics.DashboardCheck, Passed: []string{}, Warnings: []string{"Dashboard not imported yet - import the JSON file"}},
	}}

	cases := []struct {
		desc    string
		report  diagnostics.Report
		err     error
		level   string
		message string
	}{
		{
			desc:    "diagnose without errors",
			report:  report,
			level:   `"level":"info"`,
			message: "found 1 issues and 1 warnings in 2 checks",
		},
		{
			desc:    "diagnose with login failure",
			err:     errors.Wrap(diagnostics.ErrFailedToCreateToken, errors.New("unauthorized")),
			level:   `"level":"warn"`,
			message: "with error: failed to create access token",
		},
	}

	for _, tc := range cases {
		buf := new(bytes.Buffer)
		l, err := logger.New(buf, "info")
		require.Nil(t, err, fmt.Sprintf("unexpected logger error: %s", err))
		counter := testsutil.NewCounter()
		latency := generic.NewHistogram("request_latency_microseconds", 10)

		svc := api.MetricsMiddleware(api.LoggingMiddleware(stubService{report: tc.report, err: tc.err}, l), counter, latency)
		got, err := svc.Diagnose(context.Background())
		assert.Equal(t, tc.err, err, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.err, err))
		assert.Equal(t, tc.report, got, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.report, got))
		assert.Contains(t, buf.String(), tc.level, fmt.Sprintf("%s: expected %s in %s", tc.desc, tc.level, buf.String()))
		assert.Contains(t, buf.String(), tc.message, fmt.Sprintf("%s: expected %s in %s", tc.desc, tc.message, buf.String()))
		assert.Equal(t, 1.0, counter.Value("method", "diagnose"), fmt.Sprintf("%s: expected one request", tc.desc))
	}
}
