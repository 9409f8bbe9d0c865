// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/absmach/fieldsim/pkg/errors"
)

const (
	telemetryEndpoint       = "api/plugins/telemetry"
	deviceTelemetryEndpoint = "api/v1"
	timeseriesScope         = "ANY"
)

// Attribute is a key/value pair stored on an entity.
type Attribute struct {
	Key          string      `json:"key"`
	Value        interface{} `json:"value"`
	LastUpdateTs int64       `json:"lastUpdateTs,omitempty"`
}

func (sdk *tbSDK) LatestTelemetry(ctx context.Context, entity EntityID, keys ...string) (map[string]string, errors.SDKError) {
	q := url.Values{}
	q.Add("keys", strings.Join(keys, ","))
	reqURL := fmt.Sprintf("%s/%s/%s/%s/values/timeseries?%s", sdk.backendURL, telemetryEndpoint, entity.EntityType, entity.ID, q.Encode())

	body, sdkerr := sdk.authRequest(ctx, http.MethodGet, reqURL, nil, http.StatusOK)
	if sdkerr != nil {
		return nil, sdkerr
	}

	var series map[string][]timeseriesValue
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, errors.NewSDKError(err)
	}

	values := make(map[string]string, len(series))
	for key, points := range series {
		if len(points) == 0 || points[0].Value == nil {
			continue
		}
		switch v := points[0].Value.(type) {
		case string:
			values[key] = v
		default:
			values[key] = fmt.Sprint(v)
		}
	}

	return values, nil
}

func (sdk *tbSDK) SendDeviceTelemetry(ctx context.Context, accessToken string, payload Telemetry) errors.SDKError {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.NewSDKError(err)
	}

	reqURL := fmt.Sprintf("%s/%s/%s/telemetry", sdk.backendURL, deviceTelemetryEndpoint, url.PathEscape(accessToken))
	_, _, sdkerr := sdk.processRequest(ctx, http.MethodPost, reqURL, "", data, nil, http.StatusOK)

	return sdkerr
}

func (sdk *tbSDK) SendTelemetry(ctx context.Context, entity EntityID, payload Telemetry) errors.SDKError {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.NewSDKError(err)
	}

	reqURL := fmt.Sprintf("%s/%s/%s/%s/timeseries/%s", sdk.backendURL, telemetryEndpoint, entity.EntityType, entity.ID, timeseriesScope)
	_, sdkerr := sdk.authRequest(ctx, http.MethodPost, reqURL, data, http.StatusOK)

	return sdkerr
}

func (sdk *tbSDK) SaveAttributes(ctx context.Context, entity EntityID, scope string, attrs Metadata) errors.SDKError {
	data, err := json.Marshal(attrs)
	if err != nil {
		return errors.NewSDKError(err)
	}

	reqURL := fmt.Sprintf("%s/%s/%s/%s/attributes/%s", sdk.backendURL, telemetryEndpoint, entity.EntityType, entity.ID, valueOr(scope, ServerScope))
	_, sdkerr := sdk.authRequest(ctx, http.MethodPost, reqURL, data, http.StatusOK)

	return sdkerr
}

func (sdk *tbSDK) Attributes(ctx context.Context, entity EntityID, scope string) ([]Attribute, errors.SDKError) {
	reqURL := fmt.Sprintf("%s/%s/%s/%s/values/attributes/%s", sdk.backendURL, telemetryEndpoint, entity.EntityType, entity.ID, valueOr(scope, ServerScope))

	body, sdkerr := sdk.authRequest(ctx, http.MethodGet, reqURL, nil, http.StatusOK)
	if sdkerr != nil {
		return nil, sdkerr
	}

	var attrs []Attribute
	if err := json.Unmarshal(body, &attrs); err != nil {
		return nil, errors.NewSDKError(err)
	}

	return attrs, nil
}
