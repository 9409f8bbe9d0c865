// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

// PageRes holds the paging totals of list responses.
type PageRes struct {
	TotalPages    uint64 `json:"totalPages"`
	TotalElements uint64 `json:"totalElements"`
	HasNext       bool   `json:"hasNext"`
}

// DevicesPage contains a page of devices.
type DevicesPage struct {
	Data []Device `json:"data"`
	PageRes
}

// AssetsPage contains a page of assets.
type AssetsPage struct {
	Data []Asset `json:"data"`
	PageRes
}

// DeviceProfilesPage contains a page of device profiles.
type DeviceProfilesPage struct {
	Data []DeviceProfile `json:"data"`
	PageRes
}

// DashboardsPage contains a page of dashboards.
type DashboardsPage struct {
	Data []Dashboard `json:"data"`
	PageRes
}

type timeseriesValue struct {
	Ts    int64       `json:"ts"`
	Value interface{} `json:"value"`
}
