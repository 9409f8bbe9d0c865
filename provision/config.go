// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/absmach/fieldsim/pkg/errors"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml"
	"github.com/spf13/viper"
)

const dateLayout = "2006-01-02"

//go:embed manifest.toml
var defaultManifest []byte

var (
	errFailedToReadManifest = errors.New("failed to read manifest file")
	errFailedToWriteResult  = errors.New("failed to write provisioning result")

	// ErrInvalidManifest indicates a manifest that references unknown entities or repeats names.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Profile is a device profile to provision.
type Profile struct {
	Name        string `mapstructure:"name"        toml:"name"`
	Description string `mapstructure:"description" toml:"description"`
}

// FieldSpec is a field asset to provision with its server attributes.
type FieldSpec struct {
	Name                 string  `mapstructure:"name"                   toml:"name"`
	Label                string  `mapstructure:"label"                  toml:"label"`
	CropType             string  `mapstructure:"crop_type"              toml:"crop_type"`
	MinMoistureThreshold float64 `mapstructure:"min_moisture_threshold" toml:"min_moisture_threshold"`
	MaxMoistureThreshold float64 `mapstructure:"max_moisture_threshold" toml:"max_moisture_threshold"`
	Area                 float64 `mapstructure:"area"                   toml:"area"`
	Perimeter            string  `mapstructure:"perimeter"              toml:"perimeter"`
	CriticalAlarmsCount  int     `mapstructure:"critical_alarms_count"  toml:"critical_alarms_count"`
	MajorAlarmsCount     int     `mapstructure:"major_alarms_count"     toml:"major_alarms_count"`
}

// Attributes returns the server-scope attributes of the field.
func (f FieldSpec) Attributes() sdk.Metadata {
	attrs := sdk.Metadata{
		"cropType":             f.CropType,
		"minMoistureThreshold": f.MinMoistureThreshold,
		"maxMoistureThreshold": f.MaxMoistureThreshold,
		"criticalAlarmsCount":  f.CriticalAlarmsCount,
		"majorAlarmsCount":     f.MajorAlarmsCount,
	}
	if f.Area > 0 {
		attrs["area"] = f.Area
	}
	if f.Perimeter != "" {
		attrs["perimeter"] = f.Perimeter
	}

	return attrs
}

// DeviceSpec is a device to provision. Profile names its device profile
// and Field the field asset it is related to, if any.
type DeviceSpec struct {
	Name        string    `mapstructure:"name"         toml:"name"`
	Label       string    `mapstructure:"label"        toml:"label"`
	Profile     string    `mapstructure:"profile"      toml:"profile"`
	Field       string    `mapstructure:"field"        toml:"field"`
	Latitude    float64   `mapstructure:"latitude"     toml:"latitude"`
	Longitude   float64   `mapstructure:"longitude"    toml:"longitude"`
	InstallDate time.Time `mapstructure:"install_date" toml:"install_date"`
}

// Attributes returns the server-scope attributes of the device.
func (d DeviceSpec) Attributes() sdk.Metadata {
	attrs := sdk.Metadata{}
	if d.Latitude != 0 || d.Longitude != 0 {
		attrs["latitude"] = d.Latitude
		attrs["longitude"] = d.Longitude
	}
	if !d.InstallDate.IsZero() {
		attrs["installDate"] = d.InstallDate.Format(dateLayout)
	}

	return attrs
}

// Manifest describes the deployment to provision.
type Manifest struct {
	Profiles []Profile    `mapstructure:"profiles" toml:"profiles"`
	Fields   []FieldSpec  `mapstructure:"fields"   toml:"fields"`
	Devices  []DeviceSpec `mapstructure:"devices"  toml:"devices"`
}

// Validate checks that names are unique and that every device references
// a known profile and field.
func (m Manifest) Validate() error {
	profiles := map[string]bool{}
	for _, p := range m.Profiles {
		if p.Name == "" || profiles[p.Name] {
			return errors.Wrap(ErrInvalidManifest, fmt.Errorf("empty or duplicate profile name %q", p.Name))
		}
		profiles[p.Name] = true
	}
	fields := map[string]bool{}
	for _, f := range m.Fields {
		if f.Name == "" || fields[f.Name] {
			return errors.Wrap(ErrInvalidManifest, fmt.Errorf("empty or duplicate field name %q", f.Name))
		}
		fields[f.Name] = true
	}
	devices := map[string]bool{}
	for _, d := range m.Devices {
		switch {
		case d.Name == "" || devices[d.Name]:
			return errors.Wrap(ErrInvalidManifest, fmt.Errorf("empty or duplicate device name %q", d.Name))
		case !profiles[d.Profile]:
			return errors.Wrap(ErrInvalidManifest, fmt.Errorf("device %s references unknown profile %q", d.Name, d.Profile))
		case d.Field != "" && !fields[d.Field]:
			return errors.Wrap(ErrInvalidManifest, fmt.Errorf("device %s references unknown field %q", d.Name, d.Field))
		}
		devices[d.Name] = true
	}

	return nil
}

// DefaultManifest returns the embedded deployment.
func DefaultManifest() (Manifest, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewReader(defaultManifest)); err != nil {
		return Manifest{}, errors.Wrap(errFailedToReadManifest, err)
	}

	return decode(v)
}

// ReadManifest reads a manifest from a TOML, JSON or YAML file, chosen by
// extension. An empty path returns the embedded deployment.
func ReadManifest(file string) (Manifest, error) {
	if file == "" {
		return DefaultManifest()
	}

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return Manifest{}, errors.Wrap(errFailedToReadManifest, err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (Manifest, error) {
	var m Manifest
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(dateLayout),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&m, hook); err != nil {
		return Manifest{}, errors.Wrap(errFailedToReadManifest, err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}

	return m, nil
}

// Save stores the provisioning result in a TOML file.
func Save(res Result, file string) error {
	if file == "" {
		return errors.ErrEmptyPath
	}

	b, err := toml.Marshal(res)
	if err != nil {
		return errors.Wrap(errFailedToWriteResult, err)
	}
	if err := os.WriteFile(file, b, 0o600); err != nil {
		return errors.Wrap(errFailedToWriteResult, err)
	}

	return nil
}

// ReadResult loads a result stored by Save.
func ReadResult(file string) (Result, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Result{}, errors.Wrap(errFailedToReadManifest, err)
	}

	var res Result
	if err := toml.Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("Error unmarshaling toml: %w", err)
	}

	return res, nil
}
