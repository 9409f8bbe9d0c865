// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package simulator generates synthetic telemetry for the soil-moisture
// sensors, water meters, valves and fields of an irrigation deployment.
package simulator

import (
	"context"

	"github.com/absmach/fieldsim/pkg/errors"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
)

// Device types recognised by the simulator. The backend stores them as
// device profile names.
const (
	SoilMoistureSensor = "SI Soil Moisture Sensor"
	WaterMeter         = "SI Water Meter"
	SmartValve         = "SI Smart Valve"

	// FieldType is the asset type of a field.
	FieldType = "SI Field"
)

var (
	// ErrSendTelemetry indicates a telemetry sample was not accepted.
	ErrSendTelemetry = errors.New("failed to send telemetry")

	// ErrUnknownDeviceType indicates a device the simulator has no model for.
	ErrUnknownDeviceType = errors.New("unknown device type")

	// ErrLoadTopology indicates the device or field listing failed.
	ErrLoadTopology = errors.New("failed to load topology")

	// ErrBootstrap indicates the simulation could not start.
	ErrBootstrap = errors.New("failed to start simulation")

	// ErrIterationPanic indicates an iteration was aborted by a panic.
	ErrIterationPanic = errors.New("iteration panicked")

	// ErrAllSendsFailed indicates that no sample of an iteration was accepted.
	ErrAllSendsFailed = errors.New("every telemetry send of the iteration failed")

	// ErrNotStarted indicates a tick was requested before the simulation started.
	ErrNotStarted = errors.New("simulation not started")

	errEmptyBootstrap = errors.New("bootstrap returned no service or topology")
)

// Rand is the random source the simulator draws from.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	// Float64 returns a number in [0.0, 1.0).
	Float64() float64
	// IntN returns a number in [0, n).
	IntN(n int) int
}

// Device is a simulated device together with its access token.
type Device struct {
	ID          string
	Name        string
	Type        string
	AccessToken string
}

// Field is a simulated field asset.
type Field struct {
	ID   string
	Name string
}

// Service specifies an API that must be fullfiled by the domain service
// implementation, and all of its decorators (e.g. logging & metrics).
type Service interface {
	// SimulateDevice computes the next reading of the device and sends it
	// using the device access token. The reading is returned even when the
	// send fails.
	SimulateDevice(ctx context.Context, d Device) (sdk.Telemetry, error)

	// SimulateField aggregates the latest moisture of the sensors related
	// to the field, decides its irrigation state and sends the result.
	SimulateField(ctx context.Context, f Field) (FieldReport, error)
}
