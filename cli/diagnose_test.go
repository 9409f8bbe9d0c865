// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/absmach/fieldsim/cli"
	"github.com/absmach/fieldsim/internal/testsutil"
	fssdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnoseCmd(t *testing.T) {
	cases := []struct {
		desc      string
		login     fssdk.Login
		provision bool
		dashboard bool
		output    []string
		err       bool
	}{
		{
			desc:   "diagnose an empty backend",
			login:  validLogin,
			output: []string{"Missing device profile: SI Soil Moisture Sensor", "No SI Field assets exist", "next steps", "1. Run: fieldsim provision"},
			err:    true,
		},
		{
			desc:      "diagnose a provisioned backend without dashboard",
			login:     validLogin,
			provision: true,
			output:    []string{"summary: 0 issue(s), 1 warning(s)", "Import the irrigation dashboard JSON through the backend UI"},
		},
		{
			desc:      "diagnose a complete deployment",
			login:     validLogin,
			provision: true,
			dashboard: true,
			output:    []string{"Found dashboard: Smart Irrigation", "all checks passed"},
		},
		{
			desc:   "diagnose with invalid credentials",
			login:  fssdk.Login{Username: "nobody", Password: "secret"},
			output: []string{"failed to create access token"},
			err:    true,
		},
	}

	for _, tc := range cases {
		b := testsutil.NewBackend(t)
		setSDK(b, validLogin)
		if tc.provision {
			_, err := executeCommand(cli.NewProvisionCmd())
			require.Nil(t, err, fmt.Sprintf("%s: unexpected provisioning error: %s", tc.desc, err))
		}
		if tc.dashboard {
			b.AddDashboard("Smart Irrigation")
		}
		setSDK(b, tc.login)

		out, err := executeCommand(cli.NewDiagnoseCmd())
		assert.Equal(t, tc.err, err != nil, fmt.Sprintf("%s: unexpected error state: %v", tc.desc, err))
		for _, o := range tc.output {
			assert.Contains(t, out, o, fmt.Sprintf("%s: expected %q in output %q", tc.desc, o, out))
		}
	}
}

func TestDiagnoseCmdRawOutput(t *testing.T) {
	b := testsutil.NewBackend(t)
	setSDK(b, validLogin)
	cli.RawOutput = true
	defer func() { cli.RawOutput = false }()

	out, err := executeCommand(cli.NewDiagnoseCmd())
	assert.NotNil(t, err, "expected an error for an empty backend")

	var res struct {
		Checks          []json.RawMessage `json:"checks"`
		Recommendations []string          `json:"recommendations"`
	}
	line := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	err = json.Unmarshal([]byte(line), &res)
	require.Nil(t, err, fmt.Sprintf("expected JSON output got %q: %s", out, err))
	assert.Len(t, res.Checks, 6)
	assert.Equal(t, "Run: fieldsim provision", res.Recommendations[0])
}
