// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package diagnostics

import (
	"context"
	"fmt"
	"strings"

	"github.com/absmach/fieldsim/logger"
	"github.com/absmach/fieldsim/pkg/errors"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/simulator"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardKeyword = "Irrigation"

	// Telemetry is sampled on the first few sensors and fields only.
	telemetrySample = 3
)

var (
	deviceTypes        = []string{simulator.SoilMoistureSensor, simulator.WaterMeter, simulator.SmartValve}
	requiredAttributes = []string{"cropType", "maxMoistureThreshold", "minMoistureThreshold"}
	optionalAttributes = []string{"perimeter", "criticalAlarmsCount", "majorAlarmsCount"}
)

var _ Service = (*diagnosticsService)(nil)

type diagnosticsService struct {
	login  sdk.Login
	sdk    sdk.SDK
	logger logger.Logger
}

// New returns a diagnostics service.
func New(login sdk.Login, client sdk.SDK, logger logger.Logger) Service {
	return &diagnosticsService{
		login:  login,
		sdk:    client,
		logger: logger,
	}
}

func (ds *diagnosticsService) Diagnose(ctx context.Context) (Report, error) {
	if _, err := ds.sdk.CreateToken(ctx, ds.login); err != nil {
		return Report{}, errors.Wrap(ErrFailedToCreateToken, err)
	}

	checks := []func(context.Context) Check{
		ds.deviceProfiles,
		ds.fields,
		ds.devices,
		ds.relations,
		ds.telemetry,
		ds.dashboard,
	}
	report := Report{Checks: make([]Check, len(checks))}

	// Checks are independent, each one writes its own slot.
	g := new(errgroup.Group)
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			report.Checks[i] = check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return report, nil
}

func (ds *diagnosticsService) deviceProfiles(ctx context.Context) Check {
	c := newCheck(DeviceProfilesCheck)
	page, err := ds.sdk.DeviceProfiles(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize})
	if err != nil {
		ds.logger.Warn(fmt.Sprintf("Failed to fetch device profiles: %s", err))
		c.issue("Failed to fetch device profiles")
		return c
	}

	names := map[string]bool{}
	for _, p := range page.Data {
		names[p.Name] = true
	}
	for _, required := range deviceTypes {
		if !names[required] {
			c.issue(fmt.Sprintf("Missing device profile: %s", required))
			continue
		}
		c.pass(required)
	}

	return c
}

func (ds *diagnosticsService) fields(ctx context.Context) Check {
	c := newCheck(FieldsCheck)
	page, err := ds.sdk.Assets(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize, Type: simulator.FieldType})
	if err != nil {
		ds.logger.Warn(fmt.Sprintf("Failed to fetch assets: %s", err))
		c.issue("Failed to fetch assets")
		return c
	}
	if len(page.Data) == 0 {
		c.issue("No SI Field assets exist")
		return c
	}

	c.pass(fmt.Sprintf("Found %d SI Field asset(s)", len(page.Data)))
	for _, a := range page.Data {
		attrs, err := ds.sdk.Attributes(ctx, a.ID, sdk.ServerScope)
		if err != nil {
			c.warn(fmt.Sprintf("Asset '%s' attributes could not be read", a.Name))
			continue
		}
		keys := map[string]bool{}
		for _, attr := range attrs {
			keys[attr.Key] = true
		}
		if missing := absent(keys, requiredAttributes); len(missing) > 0 {
			c.issue(fmt.Sprintf("Asset '%s' missing required attributes: %s", a.Name, strings.Join(missing, ", ")))
		}
		if missing := absent(keys, optionalAttributes); len(missing) > 0 {
			c.warn(fmt.Sprintf("Asset '%s' missing optional attributes: %s", a.Name, strings.Join(missing, ", ")))
		}
		c.pass(a.Name)
	}

	return c
}

func (ds *diagnosticsService) devices(ctx context.Context) Check {
	c := newCheck(DevicesCheck)
	total := 0
	for _, typ := range deviceTypes {
		page, err := ds.sdk.Devices(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize, Type: typ})
		if err != nil {
			ds.logger.Warn(fmt.Sprintf("Failed to fetch devices of type %s: %s", typ, err))
			c.warn(fmt.Sprintf("Failed to fetch devices of type '%s'", typ))
			continue
		}
		if n := len(page.Data); n > 0 {
			total += n
			c.pass(fmt.Sprintf("%s: %d device(s)", typ, n))
			continue
		}
		c.warn(fmt.Sprintf("No devices of type '%s' found", typ))
	}
	if total == 0 {
		c.issue("No SI devices exist")
	}

	return c
}

func (ds *diagnosticsService) relations(ctx context.Context) Check {
	c := newCheck(RelationsCheck)
	page, err := ds.sdk.Assets(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize, Type: simulator.FieldType})
	if err != nil {
		c.issue("Failed to fetch assets")
		return c
	}

	for _, a := range page.Data {
		members, err := ds.sdk.FieldMembers(ctx, a.ID.ID)
		if err != nil {
			c.warn(fmt.Sprintf("Asset '%s' relations could not be read", a.Name))
			continue
		}
		if len(members) == 0 {
			c.issue(fmt.Sprintf("Asset '%s' has no device relations", a.Name))
			continue
		}
		c.pass(fmt.Sprintf("%s: %d device(s) connected", a.Name, len(members)))
	}

	return c
}

func (ds *diagnosticsService) telemetry(ctx context.Context) Check {
	c := newCheck(TelemetryCheck)

	sensors, err := ds.sdk.Devices(ctx, sdk.PageMetadata{PageSize: telemetrySample, Type: simulator.SoilMoistureSensor})
	if err == nil {
		withData := 0
		for _, d := range first(sensors.Data, telemetrySample) {
			if ds.hasTelemetry(ctx, d.ID, "moisture", "battery") {
				withData++
				c.pass(fmt.Sprintf("%s: has telemetry data", d.Name))
			}
		}
		if len(sensors.Data) > 0 && withData == 0 {
			c.warn("No devices have telemetry data - run the simulation")
		}
	}

	fields, err := ds.sdk.Assets(ctx, sdk.PageMetadata{PageSize: telemetrySample, Type: simulator.FieldType})
	if err == nil {
		for _, a := range first(fields.Data, telemetrySample) {
			if ds.hasTelemetry(ctx, a.ID, "avgMoisture", "irrigationState") {
				c.pass(fmt.Sprintf("%s: has telemetry data", a.Name))
				continue
			}
			c.warn(fmt.Sprintf("Field '%s' has no telemetry data", a.Name))
		}
	}

	return c
}

func (ds *diagnosticsService) hasTelemetry(ctx context.Context, entity sdk.EntityID, keys ...string) bool {
	values, err := ds.sdk.LatestTelemetry(ctx, entity, keys...)
	return err == nil && len(values) > 0
}

func (ds *diagnosticsService) dashboard(ctx context.Context) Check {
	c := newCheck(DashboardCheck)
	page, err := ds.sdk.Dashboards(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize})
	if err != nil {
		c.warn("Failed to fetch dashboards")
		return c
	}

	for _, d := range page.Data {
		if strings.Contains(d.Title, dashboardKeyword) {
			c.pass(fmt.Sprintf("Found dashboard: %s", d.Title))
		}
	}
	if len(c.Passed) == 0 {
		c.warn("Dashboard not imported yet - import the JSON file")
	}

	return c
}

func absent(keys map[string]bool, wanted []string) []string {
	missing := []string{}
	for _, k := range wanted {
		if !keys[k] {
			missing = append(missing, k)
		}
	}
	return missing
}

func first[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
