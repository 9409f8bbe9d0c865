// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/absmach/fieldsim/pkg/errors"
)

const dashboardsEndpoint = "api/tenant/dashboards"

// Dashboard is the summary of a tenant dashboard.
type Dashboard struct {
	ID    EntityID `json:"id"`
	Title string   `json:"title"`
	Name  string   `json:"name,omitempty"`
}

func (sdk *tbSDK) Dashboards(ctx context.Context, pm PageMetadata) (DashboardsPage, errors.SDKError) {
	url := sdk.withQueryParams(dashboardsEndpoint, pm)

	body, sdkerr := sdk.authRequest(ctx, http.MethodGet, url, nil, http.StatusOK)
	if sdkerr != nil {
		return DashboardsPage{}, sdkerr
	}

	var dp DashboardsPage
	if err := json.Unmarshal(body, &dp); err != nil {
		return DashboardsPage{}, errors.NewSDKError(err)
	}

	return dp, nil
}
