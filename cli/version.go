// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/absmach/fieldsim"
	"github.com/spf13/cobra"
)

// NewVersionCmd returns version command.
func NewVersionCmd(instanceID string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Get version of fieldsim",
		Long:  `Prints the build information of the fieldsim binary`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)
				return
			}

			logJSONCmd(*cmd, fieldsim.Info("fieldsim", instanceID))
		},
	}
}
