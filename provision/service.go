// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package provision creates the profiles, fields, devices and relations of
// an irrigation deployment and sends an initial telemetry sample for each.
package provision

import (
	"context"
	"fmt"
	"sort"

	"github.com/absmach/fieldsim/logger"
	"github.com/absmach/fieldsim/pkg/errors"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/simulator"
)

var (
	ErrFailedToCreateToken    = errors.New("failed to create access token")
	ErrFailedProfileRetrieval = errors.New("failed to retrieve device profiles")
	ErrFailedProfileCreation  = errors.New("failed to create device profile")
	ErrFailedFieldRetrieval   = errors.New("failed to retrieve fields")
	ErrFailedFieldCreation    = errors.New("failed to create field")
	ErrFailedDeviceRetrieval  = errors.New("failed to retrieve devices")
	ErrFailedDeviceCreation   = errors.New("failed to create device")
	ErrFailedAttributes       = errors.New("failed to save attributes")
	ErrFailedRelationCreation = errors.New("failed to create relation")
	ErrFailedCredentials      = errors.New("failed to retrieve device credentials")
	ErrFailedInitialTelemetry = errors.New("failed to send initial telemetry")
	ErrUnknownProfile         = errors.New("device profile was not provisioned")
	ErrIncompleteProvisioning = errors.New("provisioning completed with errors")
)

var _ Service = (*provisionService)(nil)

// Service specifies Provision service API.
type Service interface {
	// Provision logs in and creates every entity of the manifest that does
	// not exist yet. Entities are matched by name, so running it again only
	// creates what is missing. Failures of single entities are collected in
	// the result and reported with ErrIncompleteProvisioning.
	Provision(ctx context.Context) (Result, error)
}

// Config holds the credentials and the deployment to provision.
type Config struct {
	Login    sdk.Login
	Manifest Manifest
}

// Entity is a provisioned profile or field.
type Entity struct {
	Name    string `toml:"name"    json:"name"`
	ID      string `toml:"id"      json:"id"`
	Created bool   `toml:"created" json:"created"`
}

// Device is a provisioned device with its access token.
type Device struct {
	Name        string `toml:"name"                   json:"name"`
	ID          string `toml:"id"                     json:"id"`
	Type        string `toml:"type"                   json:"type"`
	Field       string `toml:"field,omitempty"        json:"field,omitempty"`
	AccessToken string `toml:"access_token,omitempty" json:"access_token,omitempty"`
	Created     bool   `toml:"created"                json:"created"`
}

// Result represent what is created with additional info.
type Result struct {
	Relations int      `toml:"relations"        json:"relations"`
	Errors    []string `toml:"errors,omitempty" json:"errors,omitempty"`
	Profiles  []Entity `toml:"profiles"         json:"profiles"`
	Fields    []Entity `toml:"fields"           json:"fields"`
	Devices   []Device `toml:"devices"          json:"devices"`
}

type provisionService struct {
	logger logger.Logger
	sdk    sdk.SDK
	rand   simulator.Rand
	conf   Config
}

// New returns new provision service.
func New(cfg Config, client sdk.SDK, r simulator.Rand, logger logger.Logger) Service {
	return &provisionService{
		logger: logger,
		sdk:    client,
		rand:   r,
		conf:   cfg,
	}
}

func (ps *provisionService) Provision(ctx context.Context) (Result, error) {
	res := Result{
		Profiles: []Entity{},
		Fields:   []Entity{},
		Devices:  []Device{},
	}
	if _, err := ps.sdk.CreateToken(ctx, ps.conf.Login); err != nil {
		return res, errors.Wrap(ErrFailedToCreateToken, err)
	}

	profiles, err := ps.profiles(ctx, &res)
	if err != nil {
		return res, err
	}
	fields, err := ps.fields(ctx, &res)
	if err != nil {
		return res, err
	}
	if err := ps.devices(ctx, profiles, &res); err != nil {
		return res, err
	}
	ps.relations(ctx, fields, &res)
	ps.initialTelemetry(ctx, fields, &res)

	if len(res.Errors) > 0 {
		return res, errors.Wrap(ErrIncompleteProvisioning, fmt.Errorf("%d errors", len(res.Errors)))
	}

	return res, nil
}

// profiles returns the profile id of every manifest profile by name.
func (ps *provisionService) profiles(ctx context.Context, res *Result) (map[string]string, error) {
	page, sdkerr := ps.sdk.DeviceProfiles(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize})
	if sdkerr != nil {
		return nil, errors.Wrap(ErrFailedProfileRetrieval, sdkerr)
	}
	existing := map[string]string{}
	for _, p := range page.Data {
		existing[p.Name] = p.ID.ID
	}

	ids := map[string]string{}
	for _, p := range ps.conf.Manifest.Profiles {
		if id, ok := existing[p.Name]; ok {
			ids[p.Name] = id
			res.Profiles = append(res.Profiles, Entity{Name: p.Name, ID: id})
			continue
		}
		created, sdkerr := ps.sdk.CreateDeviceProfile(ctx, sdk.DeviceProfile{Name: p.Name, Description: p.Description})
		if sdkerr != nil {
			ps.fail(res, ErrFailedProfileCreation, p.Name, sdkerr)
			continue
		}
		ps.logger.Info(fmt.Sprintf("Created device profile %s", p.Name))
		ids[p.Name] = created.ID.ID
		res.Profiles = append(res.Profiles, Entity{Name: p.Name, ID: created.ID.ID, Created: true})
	}

	return ids, nil
}

// fields creates the missing field assets, saves the attributes of every
// field and returns them by name.
func (ps *provisionService) fields(ctx context.Context, res *Result) (map[string]sdk.EntityID, error) {
	page, sdkerr := ps.sdk.Assets(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize, Type: simulator.FieldType})
	if sdkerr != nil {
		return nil, errors.Wrap(ErrFailedFieldRetrieval, sdkerr)
	}
	existing := map[string]sdk.EntityID{}
	for _, a := range page.Data {
		existing[a.Name] = a.ID
	}

	ids := map[string]sdk.EntityID{}
	for _, f := range ps.conf.Manifest.Fields {
		id, ok := existing[f.Name]
		created := false
		if !ok {
			a, sdkerr := ps.sdk.CreateAsset(ctx, sdk.Asset{Name: f.Name, Type: simulator.FieldType, Label: f.Label})
			if sdkerr != nil {
				ps.fail(res, ErrFailedFieldCreation, f.Name, sdkerr)
				continue
			}
			ps.logger.Info(fmt.Sprintf("Created field %s", f.Name))
			id, created = a.ID, true
		}
		ids[f.Name] = id
		res.Fields = append(res.Fields, Entity{Name: f.Name, ID: id.ID, Created: created})

		if sdkerr := ps.sdk.SaveAttributes(ctx, id, sdk.ServerScope, f.Attributes()); sdkerr != nil {
			ps.fail(res, ErrFailedAttributes, f.Name, sdkerr)
		}
	}

	return ids, nil
}

// devices creates the missing devices, saves their attributes and
// resolves their access tokens.
func (ps *provisionService) devices(ctx context.Context, profiles map[string]string, res *Result) error {
	page, sdkerr := ps.sdk.Devices(ctx, sdk.PageMetadata{PageSize: sdk.MaxPageSize})
	if sdkerr != nil {
		return errors.Wrap(ErrFailedDeviceRetrieval, sdkerr)
	}
	existing := map[string]sdk.Device{}
	for _, d := range page.Data {
		existing[d.Name] = d
	}

	for _, want := range ps.conf.Manifest.Devices {
		d, ok := existing[want.Name]
		created := false
		if !ok {
			profileID, known := profiles[want.Profile]
			if !known {
				ps.fail(res, ErrFailedDeviceCreation, want.Name, errors.Wrap(ErrUnknownProfile, errors.New(want.Profile)))
				continue
			}
			d, sdkerr = ps.sdk.CreateDevice(ctx, sdk.Device{
				Name:            want.Name,
				Type:            want.Profile,
				Label:           want.Label,
				DeviceProfileID: sdk.EntityID{ID: profileID, EntityType: sdk.EntityDeviceProfile},
			})
			if sdkerr != nil {
				ps.fail(res, ErrFailedDeviceCreation, want.Name, sdkerr)
				continue
			}
			ps.logger.Info(fmt.Sprintf("Created device %s", want.Name))
			created = true
		}

		if attrs := want.Attributes(); len(attrs) > 0 {
			if sdkerr := ps.sdk.SaveAttributes(ctx, d.ID, sdk.ServerScope, attrs); sdkerr != nil {
				ps.fail(res, ErrFailedAttributes, want.Name, sdkerr)
			}
		}

		dev := Device{Name: d.Name, ID: d.ID.ID, Type: d.Type, Field: want.Field, Created: created}
		creds, sdkerr := ps.sdk.DeviceCredentials(ctx, d.ID.ID)
		if sdkerr != nil {
			ps.fail(res, ErrFailedCredentials, want.Name, sdkerr)
		} else {
			dev.AccessToken = creds.CredentialsID
		}
		res.Devices = append(res.Devices, dev)
	}

	return nil
}

// relations links every device to its field unless the link exists.
func (ps *provisionService) relations(ctx context.Context, fields map[string]sdk.EntityID, res *Result) {
	members := map[string]map[string]bool{}
	for _, d := range res.Devices {
		field, ok := fields[d.Field]
		if !ok {
			continue
		}
		linked, ok := members[d.Field]
		if !ok {
			ids, sdkerr := ps.sdk.FieldMembers(ctx, field.ID)
			if sdkerr != nil {
				ps.fail(res, ErrFailedRelationCreation, d.Field, sdkerr)
				continue
			}
			linked = map[string]bool{}
			for _, id := range ids {
				linked[id.ID] = true
			}
			members[d.Field] = linked
		}
		if linked[d.ID] {
			continue
		}

		rel := sdk.Relation{
			From:      field,
			To:        sdk.EntityID{ID: d.ID, EntityType: sdk.EntityDevice},
			Type:      sdk.ContainsRelation,
			TypeGroup: sdk.CommonTypeGroup,
		}
		if sdkerr := ps.sdk.CreateRelation(ctx, rel); sdkerr != nil {
			ps.fail(res, ErrFailedRelationCreation, fmt.Sprintf("%s -> %s", d.Field, d.Name), sdkerr)
			continue
		}
		linked[d.ID] = true
		res.Relations++
	}
}

// initialTelemetry sends one sample per device and field so dashboards
// have data before the simulation starts.
func (ps *provisionService) initialTelemetry(ctx context.Context, fields map[string]sdk.EntityID, res *Result) {
	for _, d := range res.Devices {
		if d.AccessToken == "" {
			continue
		}
		payload := ps.deviceSample(d.Type)
		if payload == nil {
			continue
		}
		if sdkerr := ps.sdk.SendDeviceTelemetry(ctx, d.AccessToken, payload); sdkerr != nil {
			ps.fail(res, ErrFailedInitialTelemetry, d.Name, sdkerr)
		}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if sdkerr := ps.sdk.SendTelemetry(ctx, fields[name], ps.fieldSample()); sdkerr != nil {
			ps.fail(res, ErrFailedInitialTelemetry, name, sdkerr)
		}
	}
}

func (ps *provisionService) deviceSample(deviceType string) sdk.Telemetry {
	battery := ps.between(80, 99)
	switch deviceType {
	case simulator.SoilMoistureSensor:
		return sdk.Telemetry{"moisture": ps.between(45, 75), "battery": battery}
	case simulator.WaterMeter:
		return sdk.Telemetry{"pulseCounter": ps.between(100000, 150000), "battery": battery}
	case simulator.SmartValve:
		return sdk.Telemetry{"battery": battery}
	default:
		return nil
	}
}

func (ps *provisionService) fieldSample() sdk.Telemetry {
	return sdk.Telemetry{
		"avgMoisture":      ps.between(50, 70),
		"irrigationState":  string(simulator.Idle),
		"irrigationTask":   simulator.TaskNone,
		"schedulerEvents":  "[]",
		"waterConsumption": ps.between(100, 500),
	}
}

// between returns a whole number in [lo, hi].
func (ps *provisionService) between(lo, hi int) int {
	return lo + ps.rand.IntN(hi-lo+1)
}

func (ps *provisionService) fail(res *Result, wrapper error, name string, err error) {
	e := errors.Wrap(wrapper, errors.Wrap(fmt.Errorf("%s", name), err))
	ps.logger.Warn(e.Error())
	res.Errors = append(res.Errors, e.Error())
}
