// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/absmach/fieldsim/diagnostics"
	"github.com/absmach/fieldsim/pkg/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errDiagnosticsIssues = errors.New("diagnostics found critical issues")

type diagnosisRes struct {
	diagnostics.Report
	Recommendations []string `json:"recommendations"`
}

// NewDiagnoseCmd returns diagnose command.
func NewDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Check the provisioned deployment",
		Long: "Checks device profiles, fields, devices, relations, telemetry and the dashboard.\n" +
			"Nothing is modified. Exits with an error when critical issues are found.\n" +
			"usage:\n" +
			"\tfieldsim diagnose",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)
				return nil
			}

			report, err := diagnosticsService().Diagnose(cmd.Context())
			if err != nil {
				logErrorCmd(*cmd, err)
				return err
			}

			if RawOutput {
				logJSONCmd(*cmd, diagnosisRes{Report: report, Recommendations: report.Recommendations()})
			} else {
				logReportCmd(*cmd, report)
			}

			if len(report.Issues()) > 0 {
				return errDiagnosticsIssues
			}
			return nil
		},
	}
}

func logReportCmd(cmd cobra.Command, report diagnostics.Report) {
	out := cmd.OutOrStdout()
	for _, c := range report.Checks {
		fmt.Fprintf(out, "\n%s\n", color.New(color.Bold).Sprint(c.Name))
		for _, p := range c.Passed {
			fmt.Fprintf(out, "  %s %s\n", color.GreenString("✓"), p)
		}
		for _, i := range c.Issues {
			fmt.Fprintf(out, "  %s %s\n", color.RedString("✗"), i)
		}
		for _, w := range c.Warnings {
			fmt.Fprintf(out, "  %s %s\n", color.YellowString("!"), w)
		}
	}

	issues, warnings := len(report.Issues()), len(report.Warnings())
	fmt.Fprintf(out, "\nsummary: %d issue(s), %d warning(s)\n", issues, warnings)
	if report.OK() {
		fmt.Fprintf(out, "%s\n\n", color.GreenString("all checks passed"))
		return
	}

	fmt.Fprintf(out, "\n%s\n", color.New(color.Bold).Sprint("next steps"))
	for n, r := range report.Recommendations() {
		fmt.Fprintf(out, "  %d. %s\n", n+1, r)
	}
	fmt.Fprintln(out)
}
