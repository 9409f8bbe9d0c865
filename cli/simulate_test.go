// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/absmach/fieldsim/cli"
	"github.com/absmach/fieldsim/internal/testsutil"
	"github.com/absmach/fieldsim/pkg/errors"
	fssdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateCmd(t *testing.T) {
	b := testsutil.NewBackend(t)
	setSDK(b, validLogin)
	_, err := executeCommand(cli.NewProvisionCmd())
	require.Nil(t, err, fmt.Sprintf("unexpected provisioning error: %s", err))

	cfg := simulator.Config{Interval: time.Hour, Workers: 2}
	_, err = executeCommand(cli.NewSimulateCmd(&cfg), "--iterations", "2", "--interval", "1ms")
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, uint64(2), cfg.Iterations, "flags override the configuration")
	assert.Equal(t, time.Millisecond, cfg.Interval, "flags override the configuration")

	for _, d := range b.Devices() {
		// One initial sample from provisioning plus one per iteration.
		assert.Len(t, b.Samples(d.ID.ID), 3, fmt.Sprintf("%s: unexpected sample count", d.Name))
	}
	for _, a := range b.Assets() {
		samples := b.Samples(a.ID.ID)
		require.Len(t, samples, 3, fmt.Sprintf("%s: unexpected sample count", a.Name))
		last := samples[2]
		for _, key := range []string{"avgMoisture", "irrigationState", "irrigationTask", "waterConsumption"} {
			assert.Contains(t, last, key, fmt.Sprintf("%s: missing %s", a.Name, key))
		}
	}
}

func TestSimulateCmdBootstrapFailure(t *testing.T) {
	b := testsutil.NewBackend(t)
	setSDK(b, fssdk.Login{Username: "nobody", Password: "secret"})

	cfg := simulator.Config{Iterations: 1}
	out, err := executeCommand(cli.NewSimulateCmd(&cfg))
	assert.True(t, errors.Contains(err, simulator.ErrBootstrap), fmt.Sprintf("expected %s got %s", simulator.ErrBootstrap, err))
	assert.Contains(t, out, "failed to start simulation")
}
