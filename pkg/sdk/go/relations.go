// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/absmach/fieldsim/pkg/errors"
)

const (
	relationsInfoEndpoint = "api/relations/info"
	relationEndpoint      = "api/relation"
)

// Relation is a typed, directed link between two entities.
type Relation struct {
	From      EntityID `json:"from"`
	To        EntityID `json:"to"`
	Type      string   `json:"type"`
	TypeGroup string   `json:"typeGroup"`
	FromName  string   `json:"fromName,omitempty"`
	ToName    string   `json:"toName,omitempty"`
}

func (sdk *tbSDK) Relations(ctx context.Context, from EntityID) ([]Relation, errors.SDKError) {
	q := url.Values{}
	q.Add("fromId", from.ID)
	q.Add("fromType", from.EntityType)
	reqURL := fmt.Sprintf("%s/%s?%s", sdk.backendURL, relationsInfoEndpoint, q.Encode())

	body, sdkerr := sdk.authRequest(ctx, http.MethodGet, reqURL, nil, http.StatusOK)
	if sdkerr != nil {
		return nil, sdkerr
	}

	var rels []Relation
	if err := json.Unmarshal(body, &rels); err != nil {
		return nil, errors.NewSDKError(err)
	}

	return rels, nil
}

func (sdk *tbSDK) FieldMembers(ctx context.Context, fieldID string) ([]EntityID, errors.SDKError) {
	rels, sdkerr := sdk.Relations(ctx, EntityID{ID: fieldID, EntityType: EntityAsset})
	if sdkerr != nil {
		return nil, sdkerr
	}

	members := []EntityID{}
	for _, r := range rels {
		if r.To.EntityType == EntityDevice {
			members = append(members, r.To)
		}
	}

	return members, nil
}

func (sdk *tbSDK) CreateRelation(ctx context.Context, r Relation) errors.SDKError {
	req := relationReq{
		From:      r.From,
		To:        r.To,
		Type:      valueOr(r.Type, ContainsRelation),
		TypeGroup: valueOr(r.TypeGroup, CommonTypeGroup),
	}
	data, err := json.Marshal(req)
	if err != nil {
		return errors.NewSDKError(err)
	}

	reqURL := fmt.Sprintf("%s/%s", sdk.backendURL, relationEndpoint)
	_, sdkerr := sdk.authRequest(ctx, http.MethodPost, reqURL, data, http.StatusOK)

	return sdkerr
}
