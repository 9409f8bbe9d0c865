// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"
	"sort"

	"github.com/absmach/fieldsim/logger"
	"github.com/absmach/fieldsim/pkg/errors"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
)

// Topology is the set of devices and fields simulated for the whole run.
type Topology struct {
	Devices []Device
	Fields  []Field
	Trends  *Trends

	byName map[string]Device
	byID   map[string]Device
	fields map[string]Field
}

// NewTopology indexes devices and fields, sorted by name.
func NewTopology(devices []Device, fields []Field) *Topology {
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	t := &Topology{
		Devices: devices,
		Fields:  fields,
		Trends:  NewTrends(),
		byName:  make(map[string]Device, len(devices)),
		byID:    make(map[string]Device, len(devices)),
		fields:  make(map[string]Field, len(fields)),
	}
	for _, d := range devices {
		t.byName[d.Name] = d
		t.byID[d.ID] = d
	}
	for _, f := range fields {
		t.fields[f.Name] = f
	}

	return t
}

// Device returns the device with the given name.
func (t *Topology) Device(name string) (Device, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// DeviceByID returns the device with the given id.
func (t *Topology) DeviceByID(id string) (Device, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// Field returns the field with the given name.
func (t *Topology) Field(name string) (Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// LoadTopology lists the simulated devices and fields and seeds the moisture
// trend of every soil-moisture sensor. Devices whose access token can not be
// resolved are left out of the run.
func LoadTopology(ctx context.Context, client sdk.SDK, r Rand, logger logger.Logger) (*Topology, error) {
	page, err := client.Devices(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize})
	if err != nil {
		return nil, errors.Wrap(ErrLoadTopology, err)
	}

	devices := []Device{}
	for _, d := range page.Data {
		if !Simulated(d.Type) {
			continue
		}
		creds, err := client.DeviceCredentials(ctx, d.ID.ID)
		if err != nil {
			logger.Warn(fmt.Sprintf("Skipping device %s, failed to resolve access token: %s", d.Name, err))
			continue
		}
		devices = append(devices, Device{
			ID:          d.ID.ID,
			Name:        d.Name,
			Type:        d.Type,
			AccessToken: creds.CredentialsID,
		})
	}

	assets, err := client.Assets(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize, Type: FieldType})
	if err != nil {
		return nil, errors.Wrap(ErrLoadTopology, err)
	}
	fields := []Field{}
	for _, a := range assets.Data {
		fields = append(fields, Field{ID: a.ID.ID, Name: a.Name})
	}

	t := NewTopology(devices, fields)
	for _, d := range t.Devices {
		if d.Type == SoilMoistureSensor {
			t.Trends.Seed(d.Name, r)
		}
	}
	logger.Info(fmt.Sprintf("Loaded %d devices and %d fields", len(t.Devices), len(t.Fields)))

	return t, nil
}

// Simulated reports whether the simulator has a model for the device type.
func Simulated(deviceType string) bool {
	switch deviceType {
	case SoilMoistureSensor, WaterMeter, SmartValve:
		return true
	default:
		return false
	}
}
