// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/simulator"
	"github.com/stretchr/testify/mock"
)

var _ simulator.Service = (*Service)(nil)

type Service struct {
	mock.Mock
}

func (svc *Service) SimulateDevice(ctx context.Context, d simulator.Device) (sdk.Telemetry, error) {
	ret := svc.Called(ctx, d)

	payload, _ := ret.Get(0).(sdk.Telemetry)
	return payload, ret.Error(1)
}

func (svc *Service) SimulateField(ctx context.Context, f simulator.Field) (simulator.FieldReport, error) {
	ret := svc.Called(ctx, f)

	return ret.Get(0).(simulator.FieldReport), ret.Error(1)
}
