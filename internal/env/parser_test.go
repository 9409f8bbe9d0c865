// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"fmt"
	"testing"
	"time"

	"github.com/absmach/fieldsim/internal/server"
	"github.com/absmach/fieldsim/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseServerConfig(t *testing.T) {
	tests := []struct {
		description    string
		config         *server.Config
		expectedConfig *server.Config
		options        []Options
		err            error
	}{
		{
			"Parsing with Server Config",
			&server.Config{},
			&server.Config{
				Host:     "localhost",
				Port:     "9021",
				CertFile: "cert",
				KeyFile:  "key",
			},
			[]Options{
				{
					Environment: map[string]string{
						"HOST":        "localhost",
						"PORT":        "9021",
						"SERVER_CERT": "cert",
						"SERVER_KEY":  "key",
					},
				},
			},
			nil,
		},
		{
			"Parsing with Server Config with Prefix",
			&server.Config{},
			&server.Config{
				Host: "localhost",
				Port: "9021",
			},
			[]Options{
				{
					Environment: map[string]string{
						"FIELDSIM_HTTP_HOST": "localhost",
						"FIELDSIM_HTTP_PORT": "9021",
					},
					Prefix: "FIELDSIM_HTTP_",
				},
			},
			nil,
		},
	}
	for _, test := range tests {
		err := Parse(test.config, test.options...)
		switch test.err {
		case nil:
			assert.NoError(t, err, fmt.Sprintf("%s: expected no error but got %v", test.description, err))
		default:
			assert.Error(t, err, fmt.Sprintf("%s: expected error but got nil", test.description))
		}
		assert.Equal(t, test.expectedConfig, test.config, fmt.Sprintf("%s: expected %v got %v", test.description, test.expectedConfig, test.config))
	}
}

func TestParseCustomConfig(t *testing.T) {
	type CustomConfig struct {
		URL      string        `env:"BACKEND_URL"   envDefault:"http://localhost:8080"`
		Interval time.Duration `env:"TICK_INTERVAL" envDefault:"10s"`
		Workers  int           `env:"WORKERS"`
	}

	tests := []struct {
		description    string
		config         *CustomConfig
		expectedConfig *CustomConfig
		options        []Options
		err            error
	}{
		{
			"parse defaults",
			&CustomConfig{},
			&CustomConfig{URL: "http://localhost:8080", Interval: 10 * time.Second},
			[]Options{{Environment: map[string]string{}}},
			nil,
		},
		{
			"parse with missing required field",
			&CustomConfig{},
			&CustomConfig{URL: "http://localhost:8080", Interval: 10 * time.Second},
			[]Options{
				{
					Environment:     map[string]string{},
					RequiredIfNoDef: true,
				},
			},
			errors.New(`required environment variable "WORKERS" not set`),
		},
		{
			"parse with invalid duration",
			&CustomConfig{},
			&CustomConfig{URL: "http://localhost:8080"},
			[]Options{
				{
					Environment: map[string]string{
						"TICK_INTERVAL": "often",
					},
				},
			},
			errors.New("unable to parse duration"),
		},
		{
			"parse with prefix",
			&CustomConfig{},
			&CustomConfig{URL: "https://tb.example.com", Interval: time.Second, Workers: 4},
			[]Options{
				{
					Environment: map[string]string{
						"FIELDSIM_BACKEND_URL":   "https://tb.example.com",
						"FIELDSIM_TICK_INTERVAL": "1s",
						"FIELDSIM_WORKERS":       "4",
					},
					Prefix: "FIELDSIM_",
				},
			},
			nil,
		},
	}

	for _, test := range tests {
		err := Parse(test.config, test.options...)
		switch test.err {
		case nil:
			assert.NoError(t, err, fmt.Sprintf("%s: expected no error but got %v", test.description, err))
		default:
			assert.Error(t, err, fmt.Sprintf("%s: expected error but got nil", test.description))
		}
		assert.Equal(t, test.expectedConfig, test.config, fmt.Sprintf("%s: expected %v got %v", test.description, test.expectedConfig, test.config))
	}
}
