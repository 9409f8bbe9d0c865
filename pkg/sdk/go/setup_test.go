// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/absmach/fieldsim/internal/testsutil"
	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/stretchr/testify/require"
)

const (
	moistureType = "SI Soil Moisture Sensor"
	meterType    = "SI Water Meter"
	valveType    = "SI Smart Valve"
	fieldType    = "SI Field"
)

var validLogin = sdk.Login{Username: testsutil.Username, Password: testsutil.Password}

func newSDK(b *testsutil.Backend) sdk.SDK {
	return sdk.NewSDK(sdk.Config{
		BackendURL:      b.URL(),
		TLSVerification: false,
		RequestTimeout:  5 * time.Second,
	})
}

// newSession returns an SDK that already holds a valid session.
func newSession(t *testing.T, b *testsutil.Backend) sdk.SDK {
	mgsdk := newSDK(b)
	_, err := mgsdk.CreateToken(context.Background(), validLogin)
	require.Nil(t, err, fmt.Sprintf("unexpected login error: %s", err))
	return mgsdk
}
