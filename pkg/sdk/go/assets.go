// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/absmach/fieldsim/pkg/errors"
)

const (
	assetsEndpoint = "api/tenant/assets"
	assetEndpoint  = "api/asset"
)

// Asset represents a backend asset. Fields are assets of type "SI Field".
type Asset struct {
	ID          EntityID `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Label       string   `json:"label,omitempty"`
	CreatedTime int64    `json:"createdTime,omitempty"`
}

type createAssetReq struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

func (sdk *tbSDK) Assets(ctx context.Context, pm PageMetadata) (AssetsPage, errors.SDKError) {
	url := sdk.withQueryParams(assetsEndpoint, pm)

	body, sdkerr := sdk.authRequest(ctx, http.MethodGet, url, nil, http.StatusOK)
	if sdkerr != nil {
		return AssetsPage{}, sdkerr
	}

	var ap AssetsPage
	if err := json.Unmarshal(body, &ap); err != nil {
		return AssetsPage{}, errors.NewSDKError(err)
	}

	return ap, nil
}

func (sdk *tbSDK) CreateAsset(ctx context.Context, a Asset) (Asset, errors.SDKError) {
	data, err := json.Marshal(createAssetReq{Name: a.Name, Type: a.Type, Label: a.Label})
	if err != nil {
		return Asset{}, errors.NewSDKError(err)
	}

	url := fmt.Sprintf("%s/%s", sdk.backendURL, assetEndpoint)
	body, sdkerr := sdk.authRequest(ctx, http.MethodPost, url, data, http.StatusOK)
	if sdkerr != nil {
		return Asset{}, sdkerr
	}

	var asset Asset
	if err := json.Unmarshal(body, &asset); err != nil {
		return Asset{}, errors.NewSDKError(err)
	}

	return asset, nil
}
