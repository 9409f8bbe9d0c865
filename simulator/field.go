// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"gonum.org/v1/gonum/stat"
)

// IrrigationState is the irrigation decision of a field.
type IrrigationState string

const (
	// Active means the field is being irrigated.
	Active IrrigationState = "ACTIVE"
	// Idle means the field is not being irrigated.
	Idle IrrigationState = "IDLE"
)

// Irrigation tasks reported with the state.
const (
	TaskIrrigating = "Low moisture - Irrigating"
	TaskSufficient = "Moisture sufficient"
	TaskNone       = "None"
)

const (
	// DefaultMoisture is reported for a field without sensor data.
	DefaultMoisture = 60.0

	lowMoisture  = 45.0
	highMoisture = 80.0

	noEvents = "[]"
)

// FieldReport is the aggregate sent for a field on each tick.
type FieldReport struct {
	AvgMoisture      float64         `json:"avgMoisture"`
	IrrigationState  IrrigationState `json:"irrigationState"`
	IrrigationTask   string          `json:"irrigationTask"`
	SchedulerEvents  string          `json:"schedulerEvents"`
	WaterConsumption int             `json:"waterConsumption"`

	// Sensors is the number of moisture values the average was taken over.
	Sensors int `json:"-"`
}

// Telemetry returns the report as a flat sample.
func (fr FieldReport) Telemetry() sdk.Telemetry {
	return sdk.Telemetry{
		"avgMoisture":      fr.AvgMoisture,
		"irrigationState":  string(fr.IrrigationState),
		"irrigationTask":   fr.IrrigationTask,
		"schedulerEvents":  fr.SchedulerEvents,
		"waterConsumption": fr.WaterConsumption,
	}
}

// AverageMoisture returns the mean of the values rounded to one decimal,
// or DefaultMoisture when there are none.
func AverageMoisture(values []float64) float64 {
	if len(values) == 0 {
		return DefaultMoisture
	}

	return round(stat.Mean(values, nil))
}

// Decide maps an average moisture to an irrigation state and task. Both
// thresholds are strict.
func Decide(avg float64) (IrrigationState, string) {
	switch {
	case avg < lowMoisture:
		return Active, TaskIrrigating
	case avg > highMoisture:
		return Idle, TaskSufficient
	default:
		return Idle, TaskNone
	}
}

// WaterConsumption returns the simulated consumption of a field in the state.
func WaterConsumption(r Rand, state IrrigationState) int {
	if state == Active {
		return 300 + r.IntN(301)
	}

	return 50 + r.IntN(101)
}

// Aggregate builds the report of a field from its collected moisture values.
func Aggregate(r Rand, values []float64) FieldReport {
	avg := AverageMoisture(values)
	state, task := Decide(avg)

	return FieldReport{
		AvgMoisture:      avg,
		IrrigationState:  state,
		IrrigationTask:   task,
		SchedulerEvents:  noEvents,
		WaterConsumption: WaterConsumption(r, state),
		Sensors:          len(values),
	}
}
