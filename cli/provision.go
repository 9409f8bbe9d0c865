// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/absmach/fieldsim/provision"
	"github.com/spf13/cobra"
)

// NewProvisionCmd returns provision command.
func NewProvisionCmd() *cobra.Command {
	var manifestFile, outputFile string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision the irrigation deployment",
		Long: "Creates the device profiles, fields, devices, relations and initial telemetry\n" +
			"described by the manifest. Entities that already exist are kept.\n" +
			"usage:\n" +
			"\tfieldsim provision [--manifest <manifest_file>] [--output <result_file>]",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)
				return nil
			}

			manifest, err := provision.ReadManifest(manifestFile)
			if err != nil {
				logErrorCmd(*cmd, err)
				return err
			}

			svc := provisionService(provision.Config{Login: login, Manifest: manifest})
			res, perr := svc.Provision(cmd.Context())
			if perr != nil && len(res.Errors) == 0 {
				logErrorCmd(*cmd, perr)
				return perr
			}

			logJSONCmd(*cmd, res)
			if outputFile != "" {
				if err := provision.Save(res, outputFile); err != nil {
					logErrorCmd(*cmd, err)
					return err
				}
				logSavedCmd(*cmd, outputFile)
			}
			if perr != nil {
				logErrorCmd(*cmd, perr)
				return perr
			}

			logOKCmd(*cmd)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestFile, "manifest", "f", "", "Manifest file (TOML, JSON or YAML), the built-in deployment when empty")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "File the provisioning result is written to as TOML")

	return cmd
}
