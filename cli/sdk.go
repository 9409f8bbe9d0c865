// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"math/rand/v2"
	"time"

	"github.com/absmach/fieldsim/diagnostics"
	mglog "github.com/absmach/fieldsim/logger"
	fssdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/provision"
	"github.com/absmach/fieldsim/simulator"
)

// Keep SDK handle and login in global vars.
var (
	sdk    fssdk.SDK
	login  fssdk.Login
	logger mglog.Logger = mglog.NewMock()
	mw     Middlewares
)

// Middlewares decorate the services before a command runs them. A nil
// entry leaves the service as it is.
type Middlewares struct {
	Provision   func(provision.Service) provision.Service
	Diagnostics func(diagnostics.Service) diagnostics.Service
	Simulator   func(simulator.Service) simulator.Service
}

// SetSDK sets the backend SDK instance and the credentials commands log in with.
func SetSDK(s fssdk.SDK, l fssdk.Login) {
	sdk = s
	login = l
}

// SetLogger sets the logger handed to the services.
func SetLogger(l mglog.Logger) {
	logger = l
}

// SetMiddlewares sets the service decorators.
func SetMiddlewares(m Middlewares) {
	mw = m
}

func provisionService(cfg provision.Config) provision.Service {
	svc := provision.New(cfg, sdk, newRand(), logger)
	if mw.Provision != nil {
		svc = mw.Provision(svc)
	}
	return svc
}

func diagnosticsService() diagnostics.Service {
	svc := diagnostics.New(login, sdk, logger)
	if mw.Diagnostics != nil {
		svc = mw.Diagnostics(svc)
	}
	return svc
}

func simulatorService(topo *simulator.Topology, r simulator.Rand) simulator.Service {
	svc := simulator.NewService(sdk, topo, r)
	if mw.Simulator != nil {
		svc = mw.Simulator(svc)
	}
	return svc
}

func newRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}
