// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package diagnostics checks that the entities an irrigation dashboard
// relies on exist and carry data. Every check is read-only.
package diagnostics

import (
	"context"
	"strings"

	"github.com/absmach/fieldsim/pkg/errors"
)

// Check names in the order they are reported.
const (
	DeviceProfilesCheck = "Device profiles"
	FieldsCheck         = "Fields"
	DevicesCheck        = "Devices"
	RelationsCheck      = "Relations"
	TelemetryCheck      = "Telemetry"
	DashboardCheck      = "Dashboard"
)

const (
	provisionAction = "Run: fieldsim provision"
	relationsAction = "Check the field relations in the backend UI or run: fieldsim provision"
	simulateAction  = "Run: fieldsim simulate"
	dashboardAction = "Import the irrigation dashboard JSON through the backend UI"
)

// ErrFailedToCreateToken indicates the diagnostics could not log in.
var ErrFailedToCreateToken = errors.New("failed to create access token")

// Service specifies the diagnostics API.
type Service interface {
	// Diagnose logs in and runs every check. Failing checks are reported
	// in the result, only a failed login returns an error.
	Diagnose(ctx context.Context) (Report, error)
}

// Check is the outcome of one diagnostic check.
type Check struct {
	Name     string   `json:"name"`
	Passed   []string `json:"passed"`
	Issues   []string `json:"issues,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func newCheck(name string) Check {
	return Check{Name: name, Passed: []string{}}
}

func (c *Check) pass(msg string) {
	c.Passed = append(c.Passed, msg)
}

func (c *Check) issue(msg string) {
	c.Issues = append(c.Issues, msg)
}

func (c *Check) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

// Report holds the outcome of every check.
type Report struct {
	Checks []Check `json:"checks"`
}

// Issues returns the critical findings of every check.
func (r Report) Issues() []string {
	issues := []string{}
	for _, c := range r.Checks {
		issues = append(issues, c.Issues...)
	}
	return issues
}

// Warnings returns the non critical findings of every check.
func (r Report) Warnings() []string {
	warnings := []string{}
	for _, c := range r.Checks {
		warnings = append(warnings, c.Warnings...)
	}
	return warnings
}

// OK reports whether every check passed without issues or warnings.
func (r Report) OK() bool {
	return len(r.Issues()) == 0 && len(r.Warnings()) == 0
}

// Recommendations maps the findings to the actions that fix them, without
// repeating an action.
func (r Report) Recommendations() []string {
	recs := []string{}
	seen := map[string]bool{}
	add := func(action string) {
		if !seen[action] {
			seen[action] = true
			recs = append(recs, action)
		}
	}

	for _, issue := range r.Issues() {
		lower := strings.ToLower(issue)
		switch {
		case strings.Contains(lower, "device profile"),
			strings.Contains(issue, "No SI Field"),
			strings.Contains(lower, "no si devices"):
			add(provisionAction)
		case strings.Contains(lower, "no device relations"):
			add(relationsAction)
		}
	}
	for _, warning := range r.Warnings() {
		switch {
		case strings.Contains(strings.ToLower(warning), "telemetry"):
			add(simulateAction)
		case strings.Contains(warning, "Dashboard"):
			add(dashboardAction)
		}
	}

	return recs
}
