// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/absmach/fieldsim/internal/testsutil"
	"github.com/absmach/fieldsim/logger"
	"github.com/absmach/fieldsim/pkg/errors"
	"github.com/absmach/fieldsim/provision"
	"github.com/absmach/fieldsim/provision/api"
	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	res provision.Result
	err error
}

func (s stubService) Provision(context.Context) (provision.Result, error) {
	return s.res, s.err
}

func TestMiddlewares(t *testing.T) {
	res := provision.Result{
		Relations: 2,
		Profiles:  []provision.Entity{{Name: "SI Water Meter", ID: "p1"}},
		Fields:    []provision.Entity{{Name: "North Field", ID: "f1", Created: true}},
		Devices:   []provision.Device{{Name: "SI-WM-001", ID: "d1"}, {Name: "SI-WM-002", ID: "d2"}},
	}

	cases := []struct {
		desc    string
		err     error
		level   string
		message string
	}{
		{
			desc:    "provision without errors",
			level:   `"level":"info"`,
			message: "1 profiles, 1 fields, 2 devices and 2 new relations",
		},
		{
			desc:    "provision with errors",
			err:     errors.Wrap(provision.ErrIncompleteProvisioning, errors.New("1 errors")),
			level:   `"level":"warn"`,
			message: "provisioning completed with errors",
		},
	}

	for _, tc := range cases {
		buf := new(bytes.Buffer)
		l, err := logger.New(buf, "info")
		require.Nil(t, err, fmt.Sprintf("unexpected logger error: %s", err))
		counter := testsutil.NewCounter()
		latency := generic.NewHistogram("request_latency_microseconds", 10)

		svc := api.MetricsMiddleware(api.LoggingMiddleware(stubService{res: res, err: tc.err}, l), counter, latency)
		got, err := svc.Provision(context.Background())
		assert.Equal(t, tc.err, err, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.err, err))
		assert.Equal(t, res, got, fmt.Sprintf("%s: expected %v got %v", tc.desc, res, got))
		assert.Contains(t, buf.String(), tc.level, fmt.Sprintf("%s: expected %s in %s", tc.desc, tc.level, buf.String()))
		assert.Contains(t, buf.String(), tc.message, fmt.Sprintf("%s: expected %s in %s", tc.desc, tc.message, buf.String()))
		assert.Equal(t, 1.0, counter.Value("method", "provision"), fmt.Sprintf("%s: expected one request", tc.desc))
	}
}
