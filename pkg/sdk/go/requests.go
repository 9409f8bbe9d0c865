// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type relationReq struct {
	From      EntityID `json:"from"`
	To        EntityID `json:"to"`
	Type      string   `json:"type"`
	TypeGroup string   `json:"typeGroup"`
}
