// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/absmach/fieldsim/pkg/errors"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	loginEndpoint   = "api/auth/login"
	refreshEndpoint = "api/auth/token"

	// refreshMargin is how close to expiry a session token is renewed.
	refreshMargin = time.Minute
)

// Login carries the tenant credentials used to open a session.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is the session issued by the backend.
type Token struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (sdk *tbSDK) CreateToken(ctx context.Context, lt Login) (Token, errors.SDKError) {
	data, err := json.Marshal(lt)
	if err != nil {
		return Token{}, errors.NewSDKError(err)
	}

	url := fmt.Sprintf("%s/%s", sdk.backendURL, loginEndpoint)
	_, body, sdkerr := sdk.processRequest(ctx, http.MethodPost, url, "", data, nil, http.StatusOK)
	if sdkerr != nil {
		return Token{}, errors.NewSDKErrorWithStatus(errors.Wrap(errors.ErrAuthentication, sdkerr), sdkerr.StatusCode())
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return Token{}, errors.NewSDKError(err)
	}

	sdk.mu.Lock()
	sdk.login = lt
	sdk.token = token
	sdk.mu.Unlock()

	return token, nil
}

func (sdk *tbSDK) RefreshToken(ctx context.Context) (Token, errors.SDKError) {
	sdk.mu.RLock()
	refresh := sdk.token.RefreshToken
	sdk.mu.RUnlock()
	if refresh == "" {
		return Token{}, errors.NewSDKError(errors.Wrap(errors.ErrAuthentication, ErrNoSession))
	}

	data, err := json.Marshal(refreshReq{RefreshToken: refresh})
	if err != nil {
		return Token{}, errors.NewSDKError(err)
	}

	url := fmt.Sprintf("%s/%s", sdk.backendURL, refreshEndpoint)
	_, body, sdkerr := sdk.processRequest(ctx, http.MethodPost, url, "", data, nil, http.StatusOK)
	if sdkerr != nil {
		return Token{}, sdkerr
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return Token{}, errors.NewSDKError(err)
	}

	sdk.mu.Lock()
	sdk.token = token
	sdk.mu.Unlock()

	return token, nil
}

// sessionToken returns a session token that stays valid for at least refreshMargin.
func (sdk *tbSDK) sessionToken(ctx context.Context) (string, errors.SDKError) {
	sdk.mu.RLock()
	token := sdk.token
	sdk.mu.RUnlock()

	if token.AccessToken == "" {
		return "", errors.NewSDKError(errors.Wrap(errors.ErrAuthentication, ErrNoSession))
	}
	if !sdk.expiresSoon(token.AccessToken) {
		return token.AccessToken, nil
	}

	if t, err := sdk.RefreshToken(ctx); err == nil {
		return t.AccessToken, nil
	}
	if !sdk.canLogin() {
		return token.AccessToken, nil
	}
	t, err := sdk.relogin(ctx)
	if err != nil {
		return "", err
	}

	return t.AccessToken, nil
}

func (sdk *tbSDK) relogin(ctx context.Context) (Token, errors.SDKError) {
	sdk.mu.RLock()
	lt := sdk.login
	sdk.mu.RUnlock()

	return sdk.CreateToken(ctx, lt)
}

func (sdk *tbSDK) canLogin() bool {
	sdk.mu.RLock()
	defer sdk.mu.RUnlock()

	return sdk.login.Username != ""
}

// expiresSoon reads the exp claim without verifying the signature, the
// backend being the only party able to do that. Tokens that do not parse
// or carry no expiry are used as they are.
func (sdk *tbSDK) expiresSoon(accessToken string) bool {
	tok, err := jwt.ParseString(accessToken, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return false
	}
	exp := tok.Expiration()
	if exp.IsZero() {
		return false
	}

	return exp.Sub(sdk.now()) < refreshMargin
}
