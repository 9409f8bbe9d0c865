// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package simulator_test

import (
	"fmt"
	"testing"

	"github.com/absmach/fieldsim/simulator"
	"github.com/absmach/fieldsim/simulator/mocks"
	"github.com/stretchr/testify/assert"
)

func TestAverageMoisture(t *testing.T) {
	cases := []struct {
		desc   string
		values []float64
		avg    float64
	}{
		{
			desc:   "no values",
			values: nil,
			avg:    60.0,
		},
		{
			desc:   "single value",
			values: []float64{52.3},
			avg:    52.3,
		},
		{
			desc:   "two values",
			values: []float64{40, 50},
			avg:    45.0,
		},
		{
			desc:   "rounded to one decimal",
			values: []float64{40.1, 50.2, 60.4},
			avg:    50.2,
		},
		{
			desc:   "mean stored just below the high tie",
			values: []float64{70.1, 90.0},
			avg:    80.0,
		},
		{
			desc:   "mean stored just below a low tie",
			values: []float64{30.0, 30.3},
			avg:    30.1,
		},
	}

	for _, tc := range cases {
		avg := simulator.AverageMoisture(tc.values)
		assert.Equal(t, tc.avg, avg, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.avg, avg))
	}
}

func TestDecide(t *testing.T) {
	cases := []struct {
		desc  string
		avg   float64
		state simulator.IrrigationState
		task  string
	}{
		{
			desc:  "dry field",
			avg:   30,
			state: simulator.Active,
			task:  simulator.TaskIrrigating,
		},
		{
			desc:  "just below the low threshold",
			avg:   44.9,
			state: simulator.Active,
			task:  simulator.TaskIrrigating,
		},
		{
			desc:  "at the low threshold",
			avg:   45,
			state: simulator.Idle,
			task:  simulator.TaskNone,
		},
		{
			desc:  "default moisture",
			avg:   simulator.DefaultMoisture,
			state: simulator.Idle,
			task:  simulator.TaskNone,
		},
		{
			desc:  "at the high threshold",
			avg:   80,
			state: simulator.Idle,
			task:  simulator.TaskNone,
		},
		{
			desc:  "above the high threshold",
			avg:   80.1,
			state: simulator.Idle,
			task:  simulator.TaskSufficient,
		},
	}

	for _, tc := range cases {
		state, task := simulator.Decide(tc.avg)
		assert.Equal(t, tc.state, state, fmt.Sprintf("%s: expected %s got %s", tc.desc, tc.state, state))
		assert.Equal(t, tc.task, task, fmt.Sprintf("%s: expected %s got %s", tc.desc, tc.task, task))
	}
}

func TestWaterConsumption(t *testing.T) {
	cases := []struct {
		desc        string
		state       simulator.IrrigationState
		ints        []int
		consumption int
	}{
		{
			desc:        "active lowest",
			state:       simulator.Active,
			ints:        []int{0},
			consumption: 300,
		},
		{
			desc:        "active highest",
			state:       simulator.Active,
			ints:        []int{300},
			consumption: 600,
		},
		{
			desc:        "idle lowest",
			state:       simulator.Idle,
			ints:        []int{0},
			consumption: 50,
		},
		{
			desc:        "idle highest",
			state:       simulator.Idle,
			ints:        []int{100},
			consumption: 150,
		},
	}

	for _, tc := range cases {
		c := simulator.WaterConsumption(mocks.NewRand(nil, tc.ints), tc.state)
		assert.Equal(t, tc.consumption, c, fmt.Sprintf("%s: expected %d got %d", tc.desc, tc.consumption, c))
	}
}

func TestAggregate(t *testing.T) {
	cases := []struct {
		desc   string
		values []float64
		report simulator.FieldReport
	}{
		{
			desc:   "sensors average to the low threshold",
			values: []float64{40, 50},
			report: simulator.FieldReport{
				AvgMoisture:      45.0,
				IrrigationState:  simulator.Idle,
				IrrigationTask:   simulator.TaskNone,
				SchedulerEvents:  "[]",
				WaterConsumption: 60,
				Sensors:          2,
			},
		},
		{
			desc:   "no readings",
			values: []float64{},
			report: simulator.FieldReport{
				AvgMoisture:      60.0,
				IrrigationState:  simulator.Idle,
				IrrigationTask:   simulator.TaskNone,
				SchedulerEvents:  "[]",
				WaterConsumption: 60,
			},
		},
		{
			desc:   "mean rounds down onto the high threshold",
			values: []float64{70.1, 90.0},
			report: simulator.FieldReport{
				AvgMoisture:      80.0,
				IrrigationState:  simulator.Idle,
				IrrigationTask:   simulator.TaskNone,
				SchedulerEvents:  "[]",
				WaterConsumption: 60,
				Sensors:          2,
			},
		},
		{
			desc:   "dry field",
			values: []float64{35.5, 38.1},
			report: simulator.FieldReport{
				AvgMoisture:      36.8,
				IrrigationState:  simulator.Active,
				IrrigationTask:   simulator.TaskIrrigating,
				SchedulerEvents:  "[]",
				WaterConsumption: 310,
				Sensors:          2,
			},
		},
	}

	for _, tc := range cases {
		report := simulator.Aggregate(mocks.NewRand(nil, []int{10}), tc.values)
		assert.Equal(t, tc.report, report, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.report, report))
	}

	payload := cases[0].report.Telemetry()
	assert.Equal(t, "IDLE", payload["irrigationState"])
	assert.Equal(t, "[]", payload["schedulerEvents"])
	assert.Equal(t, 45.0, payload["avgMoisture"])
}
