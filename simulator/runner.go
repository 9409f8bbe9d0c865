// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/absmach/fieldsim/logger"
	"github.com/absmach/fieldsim/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the pause between two iterations.
const DefaultInterval = 10 * time.Second

// State is the lifecycle state of a Runner.
type State int

const (
	// Starting covers authentication and topology loading.
	Starting State = iota
	// Running means iterations are being executed.
	Running
	// Stopping means the loop ended on request or after the configured iterations.
	Stopping
	// Failed means the run could not start.
	Failed
)

func (s State) String() string {
	switch s {
	case Starting:
		return "STARTING"
	case Running:
		return "RUNNING"
	case Stopping:
		return "STOPPING"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Clock provides the pause between iterations.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Bootstrap authenticates and loads the topology the run works on.
type Bootstrap func(ctx context.Context) (Service, *Topology, error)

// Config holds the loop parameters.
type Config struct {
	// Interval is measured from the end of one iteration to the start of the next.
	Interval time.Duration
	// Iterations bounds the run, 0 runs until cancelled.
	Iterations uint64
	// Workers bounds concurrent sends within a phase.
	Workers int
}

// Report summarises one iteration.
type Report struct {
	Iteration     uint64
	DevicesSent   int
	DevicesFailed int
	FieldsSent    int
	FieldsFailed  int
}

func (r Report) total() int {
	return r.DevicesSent + r.DevicesFailed + r.FieldsSent + r.FieldsFailed
}

func (r Report) failed() int {
	return r.DevicesFailed + r.FieldsFailed
}

// Runner drives the simulation loop.
type Runner struct {
	cfg       Config
	bootstrap Bootstrap
	clock     Clock
	logger    logger.Logger

	mu    sync.RWMutex
	state State
	svc   Service
	topo  *Topology
}

// NewRunner returns a runner in the Starting state. A nil clock uses wall time.
func NewRunner(cfg Config, bootstrap Bootstrap, clock Clock, logger logger.Logger) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if clock == nil {
		clock = realClock{}
	}

	return &Runner{
		cfg:       cfg,
		bootstrap: bootstrap,
		clock:     clock,
		logger:    logger,
		state:     Starting,
	}
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Run starts the simulation and blocks until ctx is cancelled, the
// configured iterations are done, or the start fails. Cancellation is
// observed between iterations only; an iteration in progress completes.
func (r *Runner) Run(ctx context.Context) error {
	r.setState(Starting)
	svc, topo, err := r.bootstrap(ctx)
	if err != nil {
		r.setState(Failed)
		return errors.Wrap(ErrBootstrap, err)
	}
	if svc == nil || topo == nil {
		r.setState(Failed)
		return errors.Wrap(ErrBootstrap, errEmptyBootstrap)
	}
	r.mu.Lock()
	r.svc, r.topo = svc, topo
	r.mu.Unlock()

	r.setState(Running)
	r.logger.Info(fmt.Sprintf("Simulation started with %d devices and %d fields, interval %s", len(topo.Devices), len(topo.Fields), r.cfg.Interval))

	for n := uint64(1); r.cfg.Iterations == 0 || n <= r.cfg.Iterations; n++ {
		if ctx.Err() != nil {
			break
		}

		rep, err := r.iterate(context.WithoutCancel(ctx), n)
		switch err {
		case nil:
			r.logger.Info(fmt.Sprintf("Iteration %d completed: %d/%d devices and %d/%d fields sent", n, rep.DevicesSent, rep.DevicesSent+rep.DevicesFailed, rep.FieldsSent, rep.FieldsSent+rep.FieldsFailed))
		default:
			r.logger.Error(fmt.Sprintf("Iteration %d failed: %s", n, err))
		}

		if r.cfg.Iterations != 0 && n == r.cfg.Iterations {
			break
		}
		select {
		case <-ctx.Done():
		case <-r.clock.After(r.cfg.Interval):
		}
	}

	r.setState(Stopping)
	r.logger.Info("Simulation stopped")

	return nil
}

// iterate runs one tick and turns a panic into an error.
func (r *Runner) iterate(ctx context.Context, n uint64) (rep Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Wrap(ErrIterationPanic, fmt.Errorf("%v", p))
		}
	}()

	rep, err = r.Tick(ctx)
	rep.Iteration = n

	return rep, err
}

// Tick sends one sample for every device and then one aggregate for every
// field. Fields are only processed once every device send has returned. A
// failed send is counted and does not affect the others.
func (r *Runner) Tick(ctx context.Context) (Report, error) {
	r.mu.RLock()
	svc, topo := r.svc, r.topo
	r.mu.RUnlock()
	if svc == nil || topo == nil {
		return Report{}, ErrNotStarted
	}

	var (
		mu  sync.Mutex
		rep Report
	)
	count := func(sent, failed *int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			*failed++
			return
		}
		*sent++
	}

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)
	for _, d := range topo.Devices {
		d := d
		g.Go(func() error {
			err := r.guard(d.Name, func() error {
				_, err := svc.SimulateDevice(ctx, d)
				return err
			})
			count(&rep.DevicesSent, &rep.DevicesFailed, err)
			return nil
		})
	}
	_ = g.Wait()

	g = new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)
	for _, f := range topo.Fields {
		f := f
		g.Go(func() error {
			err := r.guard(f.Name, func() error {
				_, err := svc.SimulateField(ctx, f)
				return err
			})
			count(&rep.FieldsSent, &rep.FieldsFailed, err)
			return nil
		})
	}
	_ = g.Wait()

	if rep.total() > 0 && rep.failed() == rep.total() {
		return rep, ErrAllSendsFailed
	}

	return rep, nil
}

// guard runs fn and turns a panic into an error so one entity can not
// take the worker goroutine down.
func (r *Runner) guard(name string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Wrap(ErrIterationPanic, fmt.Errorf("%s: %v", name, p))
			r.logger.Error(err.Error())
		}
	}()

	return fn()
}
