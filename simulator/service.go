// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"strconv"
	"sync"

	"github.com/absmach/fieldsim/pkg/errors"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
)

const moistureKey = "moisture"

var _ Service = (*service)(nil)

type service struct {
	sdk  sdk.SDK
	topo *Topology
	rand Rand
}

// NewService returns a simulation service over the loaded topology.
// The random source is shared by concurrent calls.
func NewService(client sdk.SDK, topo *Topology, r Rand) Service {
	return &service{
		sdk:  client,
		topo: topo,
		rand: &lockedRand{r: r},
	}
}

func (svc *service) SimulateDevice(ctx context.Context, d Device) (sdk.Telemetry, error) {
	var payload sdk.Telemetry
	switch d.Type {
	case SoilMoistureSensor:
		payload = svc.topo.Trends.Advance(d.Name, svc.rand).Telemetry()
	case WaterMeter:
		payload = NextMeter(svc.rand).Telemetry()
	case SmartValve:
		payload = NextValve(svc.rand).Telemetry()
	default:
		return nil, errors.Wrap(ErrUnknownDeviceType, errors.New(d.Type))
	}

	if err := svc.sdk.SendDeviceTelemetry(ctx, d.AccessToken, payload); err != nil {
		return payload, errors.Wrap(ErrSendTelemetry, err)
	}

	return payload, nil
}

func (svc *service) SimulateField(ctx context.Context, f Field) (FieldReport, error) {
	report := Aggregate(svc.rand, svc.moistureValues(ctx, f))

	entity := sdk.EntityID{ID: f.ID, EntityType: sdk.EntityAsset}
	if err := svc.sdk.SendTelemetry(ctx, entity, report.Telemetry()); err != nil {
		return report, errors.Wrap(ErrSendTelemetry, err)
	}

	return report, nil
}

// moistureValues reads the latest moisture of the soil sensors related to
// the field. Failed reads and unparsable values are left out.
func (svc *service) moistureValues(ctx context.Context, f Field) []float64 {
	members, err := svc.sdk.FieldMembers(ctx, f.ID)
	if err != nil {
		return nil
	}

	values := []float64{}
	for _, m := range members {
		d, ok := svc.topo.DeviceByID(m.ID)
		if !ok || d.Type != SoilMoistureSensor {
			continue
		}
		latest, err := svc.sdk.LatestTelemetry(ctx, m, moistureKey)
		if err != nil {
			continue
		}
		raw, ok := latest[moistureKey]
		if !ok {
			continue
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			continue
		}
		values = append(values, v)
	}

	return values
}

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (lr *lockedRand) Float64() float64 {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	return lr.r.Float64()
}

func (lr *lockedRand) IntN(n int) int {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	return lr.r.IntN(n)
}
