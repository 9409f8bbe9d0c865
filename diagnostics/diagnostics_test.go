// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package diagnostics_test

import (
	"fmt"
	"testing"

	"github.com/absmach/fieldsim/diagnostics"
	"github.com/stretchr/testify/assert"
)

func TestRecommendations(t *testing.T) {
	cases := []struct {
		desc   string
		report diagnostics.Report
		recs   []string
	}{
		{
			desc:   "clean report",
			report: diagnostics.Report{Checks: []diagnostics.Check{{Name: diagnostics.DeviceProfilesCheck, Passed: []string{"SI Water Meter"}}}},
			recs:   []string{},
		},
		{
			desc: "missing entities recommend provisioning once",
			report: diagnostics.Report{Checks: []diagnostics.Check{
				{Name: diagnostics.DeviceProfilesCheck, Issues: []string{"Missing device profile: SI Water Meter", "Missing device profile: SI Smart Valve"}},
				{Name: diagnostics.FieldsCheck, Issues: []string{"No SI Field assets exist"}},
				{Name: diagnostics.DevicesCheck, Issues: []string{"No SI devices exist"}},
			}},
			recs: []string{"Run: fieldsim provision"},
		},
		{
			desc: "relations, telemetry and dashboard",
			report: diagnostics.Report{Checks: []diagnostics.Check{
				{Name: diagnostics.RelationsCheck, Issues: []string{"Asset 'North Field' has no device relations"}},
				{Name: diagnostics.TelemetryCheck, Warnings: []string{"No devices have telemetry data - run the simulation"}},
				{Name: diagnostics.DashboardCheck, Warnings: []string{"Dashboard not imported yet - import the JSON file"}},
			}},
			recs: []string{
				"Check the field relations in the backend UI or run: fieldsim provision",
				"Run: fieldsim simulate",
				"Import the irrigation dashboard JSON through the backend UI",
			},
		},
		{
			desc: "missing optional attributes have no action",
			report: diagnostics.Report{Checks: []diagnostics.Check{
				{Name: diagnostics.FieldsCheck, Warnings: []string{"Asset 'North Field' missing optional attributes: perimeter"}},
			}},
			recs: []string{},
		},
	}

	for _, tc := range cases {
		recs := tc.report.Recommendations()
		assert.Equal(t, tc.recs, recs, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.recs, recs))
	}
}

func TestReportOK(t *testing.T) {
	ok := diagnostics.Report{Checks: []diagnostics.Check{{Name: diagnostics.DashboardCheck, Passed: []string{"Found dashboard: Irrigation"}}}}
	assert.True(t, ok.OK())

	warned := diagnostics.Report{Checks: []diagnostics.Check{{Name: diagnostics.DashboardCheck, Warnings: []string{"Dashboard not imported yet - import the JSON file"}}}}
	assert.False(t, warned.OK())
	assert.Len(t, warned.Warnings(), 1)
	assert.Empty(t, warned.Issues())
}
