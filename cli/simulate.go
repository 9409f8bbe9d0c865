// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"

	"github.com/absmach/fieldsim/simulator"
	"github.com/spf13/cobra"
)

// NewSimulateCmd returns simulate command. Flags override the values cfg
// holds when the command is built.
func NewSimulateCmd(cfg *simulator.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Send simulated telemetry",
		Long: "Sends a reading for every simulated device and then an aggregate for every\n" +
			"field, once per interval, until interrupted or the iterations are done.\n" +
			"usage:\n" +
			"\tfieldsim simulate [--interval <duration>] [--iterations <n>] [--workers <n>]",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)
				return nil
			}

			runner := simulator.NewRunner(*cfg, bootstrap, clock, logger)
			if err := runner.Run(cmd.Context()); err != nil {
				logErrorCmd(*cmd, err)
				return err
			}

			return nil
		},
	}

	cmd.Flags().DurationVarP(&cfg.Interval, "interval", "i", cfg.Interval, "Pause between two iterations")
	cmd.Flags().Uint64VarP(&cfg.Iterations, "iterations", "n", cfg.Iterations, "Number of iterations, 0 runs until interrupted")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Concurrent sends within a phase")

	return cmd
}

// clock is the wall clock unless replaced in tests.
var clock simulator.Clock

func bootstrap(ctx context.Context) (simulator.Service, *simulator.Topology, error) {
	if err := authenticate(ctx); err != nil {
		return nil, nil, err
	}

	r := newRand()
	topo, err := simulator.LoadTopology(ctx, sdk, r, logger)
	if err != nil {
		return nil, nil, err
	}

	return simulatorService(topo, r), topo, nil
}
