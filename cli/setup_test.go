// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli_test

import (
	"bytes"
	"context"
	"time"

	"github.com/absmach/fieldsim/cli"
	"github.com/absmach/fieldsim/internal/testsutil"
	fssdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/spf13/cobra"
)

var validLogin = fssdk.Login{Username: testsutil.Username, Password: testsutil.Password}

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buffer := new(bytes.Buffer)
	root := &cobra.Command{Use: "fieldsim", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(cmd)
	root.SetOut(buffer)
	root.SetErr(buffer)
	root.SetArgs(append([]string{cmd.Name()}, args...))
	err := root.ExecuteContext(context.Background())
	return buffer.String(), err
}

func setSDK(b *testsutil.Backend, login fssdk.Login) {
	s := fssdk.NewSDK(fssdk.Config{BackendURL: b.URL(), RequestTimeout: 5 * time.Second})
	cli.SetSDK(s, login)
	cli.RawOutput = false
}
