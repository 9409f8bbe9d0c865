// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package testsutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

// Credentials accepted by the fake backend.
const (
	Username = "tenant@thingsboard.org"
	Password = "tenant"
)

var signingKey = []byte("fieldsim-test-key")

// Backend is an in-memory stand-in for the device-management API.
type Backend struct {
	t      *testing.T
	server *httptest.Server

	mu          sync.Mutex
	tokenTTL    time.Duration
	sessions    map[string]bool
	refresh     map[string]bool
	logins      int
	refreshes   int
	reject      int
	profiles    []sdk.DeviceProfile
	devices     []sdk.Device
	assets      []sdk.Asset
	dashboards  []sdk.Dashboard
	relations   []sdk.Relation
	credentials map[string]string
	failing     map[string]bool
	latest      map[string]map[string]string
	samples     map[string][]sdk.Telemetry
	attributes  map[string]sdk.Metadata
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	b := &Backend{
		t:           t,
		tokenTTL:    time.Hour,
		sessions:    make(map[string]bool),
		refresh:     make(map[string]bool),
		credentials: make(map[string]string),
		failing:     make(map[string]bool),
		latest:      make(map[string]map[string]string),
		samples:     make(map[string][]sdk.Telemetry),
		attributes:  make(map[string]sdk.Metadata),
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)

	return b
}

// URL returns the base URL of the backend.
func (b *Backend) URL() string {
	return b.server.URL
}

// SetTokenTTL sets the lifetime of session tokens issued from now on.
func (b *Backend) SetTokenTTL(ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenTTL = ttl
}

// RejectSessions makes the next n authenticated calls fail with 401.
func (b *Backend) RejectSessions(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reject = n
}

// FailTelemetry makes telemetry submitted with the device access token fail.
func (b *Backend) FailTelemetry(accessToken string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[accessToken] = true
}

// Logins returns the number of successful logins.
func (b *Backend) Logins() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logins
}

// Refreshes returns the number of successful token refreshes.
func (b *Backend) Refreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshes
}

// AddProfile stores a device profile.
func (b *Backend) AddProfile(name string) sdk.DeviceProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addProfile(name)
}

// AddDevice stores a device of the given type with a generated access token.
func (b *Backend) AddDevice(name, typ string) sdk.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addDevice(name, typ, "")
}

// AddAsset stores an asset.
func (b *Backend) AddAsset(name, typ string) sdk.Asset {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addAsset(name, typ, "")
}

// AddDashboard stores a dashboard.
func (b *Backend) AddDashboard(title string) sdk.Dashboard {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := sdk.Dashboard{ID: b.newID(sdk.EntityDashboard), Title: title}
	b.dashboards = append(b.dashboards, d)
	return d
}

// Relate stores a Contains relation.
func (b *Backend) Relate(from, to sdk.EntityID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relations = append(b.relations, sdk.Relation{From: from, To: to, Type: sdk.ContainsRelation, TypeGroup: sdk.CommonTypeGroup})
}

// SetLatest sets the latest value of a telemetry key.
func (b *Backend) SetLatest(entityID, key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLatest(entityID, key, value)
}

// SetAttributes replaces the server attributes of an entity.
func (b *Backend) SetAttributes(entityID string, attrs sdk.Metadata) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attributes[entityID] = attrs
}

// Credentials returns the access token of a device.
func (b *Backend) Credentials(deviceID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.credentials[deviceID]
}

// Samples returns the telemetry received for an entity id.
func (b *Backend) Samples(entityID string) []sdk.Telemetry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sdk.Telemetry{}, b.samples[entityID]...)
}

// Attributes returns the server attributes of an entity.
func (b *Backend) Attributes(entityID string) sdk.Metadata {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attributes[entityID]
}

// Devices returns the stored devices.
func (b *Backend) Devices() []sdk.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sdk.Device{}, b.devices...)
}

// Assets returns the stored assets.
func (b *Backend) Assets() []sdk.Asset {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sdk.Asset{}, b.assets...)
}

// Profiles returns the stored device profiles.
func (b *Backend) Profiles() []sdk.DeviceProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sdk.DeviceProfile{}, b.profiles...)
}

// RelationsFrom returns the stored relations whose source is id.
func (b *Backend) RelationsFrom(id string) []sdk.Relation {
	b.mu.Lock()
	defer b.mu.Unlock()
	var rels []sdk.Relation
	for _, r := range b.relations {
		if r.From.ID == id {
			rels = append(rels, r)
		}
	}
	return rels
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/login", b.login)
	r.Post("/api/auth/token", b.refreshToken)
	r.Post("/api/v1/{token}/telemetry", b.deviceTelemetry)

	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)
		r.Get("/api/tenant/devices", b.listDevices)
		r.Post("/api/device", b.createDevice)
		r.Get("/api/device/{id}/credentials", b.deviceCredentials)
		r.Get("/api/deviceProfiles", b.listProfiles)
		r.Post("/api/deviceProfile", b.createProfile)
		r.Get("/api/tenant/assets", b.listAssets)
		r.Post("/api/asset", b.createAsset)
		r.Get("/api/tenant/dashboards", b.listDashboards)
		r.Get("/api/relations/info", b.listRelations)
		r.Post("/api/relation", b.createRelation)
		r.Get("/api/plugins/telemetry/{type}/{id}/values/timeseries", b.latestTelemetry)
		r.Post("/api/plugins/telemetry/{type}/{id}/timeseries/{scope}", b.entityTelemetry)
		r.Get("/api/plugins/telemetry/{type}/{id}/values/attributes/{scope}", b.getAttributes)
		r.Post("/api/plugins/telemetry/{type}/{id}/attributes/{scope}", b.saveAttributes)
	})

	return r
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get(sdk.AuthHeader), sdk.BearerPrefix)
		b.mu.Lock()
		ok := b.sessions[token]
		if b.reject > 0 {
			b.reject--
			ok = false
		}
		b.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Token has expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req sdk.Login
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username != Username || req.Password != Password {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	b.mu.Lock()
	b.logins++
	token := b.issue()
	b.mu.Unlock()
	writeJSON(w, token)
}

func (b *Backend) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.refresh[req.RefreshToken] {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(b.refresh, req.RefreshToken)
	b.refreshes++
	writeJSON(w, b.issue())
}

// issue must be called with mu held.
func (b *Backend) issue() sdk.Token {
	access := b.sign(b.tokenTTL)
	refresh := b.sign(24 * time.Hour)
	b.sessions[access] = true
	b.refresh[refresh] = true
	return sdk.Token{AccessToken: access, RefreshToken: refresh}
}

func (b *Backend) sign(ttl time.Duration) string {
	tok, err := jwt.NewBuilder().
		Issuer("fieldsim-test").
		Subject(Username).
		JwtID(GenerateUUID(b.t)).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(ttl)).
		Build()
	require.Nil(b.t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, signingKey))
	require.Nil(b.t, err)
	return string(signed)
}

func (b *Backend) listDevices(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	b.mu.Lock()
	defer b.mu.Unlock()
	page := sdk.DevicesPage{Data: []sdk.Device{}}
	for _, d := range b.devices {
		if typ == "" || d.Type == typ {
			page.Data = append(page.Data, d)
		}
	}
	page.TotalElements = uint64(len(page.Data))
	page.TotalPages = 1
	writeJSON(w, page)
}

func (b *Backend) createDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string        `json:"name"`
		Type            string        `json:"type"`
		Label           string        `json:"label"`
		DeviceProfileID *sdk.EntityID `json:"deviceProfileId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.devices {
		if d.Name == req.Name {
			writeError(w, http.StatusBadRequest, "Device with such name already exists!")
			return
		}
	}
	typ := req.Type
	if req.DeviceProfileID != nil {
		for _, p := range b.profiles {
			if p.ID.ID == req.DeviceProfileID.ID {
				typ = p.Name
			}
		}
	}
	writeJSON(w, b.addDevice(req.Name, typ, req.Label))
}

func (b *Backend) deviceCredentials(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	token, ok := b.credentials[id]
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Requested item wasn't found!")
		return
	}
	writeJSON(w, sdk.DeviceCredentials{
		DeviceID:        sdk.EntityID{ID: id, EntityType: sdk.EntityDevice},
		CredentialsType: "ACCESS_TOKEN",
		CredentialsID:   token,
	})
}

func (b *Backend) listProfiles(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	page := sdk.DeviceProfilesPage{Data: append([]sdk.DeviceProfile{}, b.profiles...)}
	page.TotalElements = uint64(len(page.Data))
	writeJSON(w, page)
}

func (b *Backend) createProfile(w http.ResponseWriter, r *http.Request) {
	var req sdk.DeviceProfile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProfileData == nil {
		writeError(w, http.StatusBadRequest, "Device profile data should be specified!")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.profiles {
		if p.Name == req.Name {
			writeError(w, http.StatusBadRequest, "Device profile with such name already exists!")
			return
		}
	}
	p := b.addProfile(req.Name)
	writeJSON(w, p)
}

func (b *Backend) listAssets(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	b.mu.Lock()
	defer b.mu.Unlock()
	page := sdk.AssetsPage{Data: []sdk.Asset{}}
	for _, a := range b.assets {
		if typ == "" || a.Type == typ {
			page.Data = append(page.Data, a)
		}
	}
	page.TotalElements = uint64(len(page.Data))
	writeJSON(w, page)
}

func (b *Backend) createAsset(w http.ResponseWriter, r *http.Request) {
	var req sdk.Asset
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.assets {
		if a.Name == req.Name {
			writeError(w, http.StatusBadRequest, "Asset with such name already exists!")
			return
		}
	}
	writeJSON(w, b.addAsset(req.Name, req.Type, req.Label))
}

func (b *Backend) listDashboards(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	page := sdk.DashboardsPage{Data: append([]sdk.Dashboard{}, b.dashboards...)}
	page.TotalElements = uint64(len(page.Data))
	writeJSON(w, page)
}

func (b *Backend) listRelations(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("fromId")
	fromType := r.URL.Query().Get("fromType")
	b.mu.Lock()
	defer b.mu.Unlock()
	rels := []sdk.Relation{}
	for _, rel := range b.relations {
		if rel.From.ID == from && rel.From.EntityType == fromType {
			rels = append(rels, rel)
		}
	}
	writeJSON(w, rels)
}

func (b *Backend) createRelation(w http.ResponseWriter, r *http.Request) {
	var req sdk.Relation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Type == "" || req.TypeGroup == "" {
		writeError(w, http.StatusBadRequest, "Relation type should be specified!")
		return
	}
	b.mu.Lock()
	b.relations = append(b.relations, req)
	b.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) latestTelemetry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	keys := strings.Split(r.URL.Query().Get("keys"), ",")
	b.mu.Lock()
	defer b.mu.Unlock()
	res := map[string][]map[string]interface{}{}
	for _, key := range keys {
		if v, ok := b.latest[id][key]; ok {
			res[key] = []map[string]interface{}{{"ts": time.Now().UnixMilli(), "value": v}}
		}
	}
	writeJSON(w, res)
}

func (b *Backend) entityTelemetry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var sample sdk.Telemetry
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	b.record(id, sample)
	b.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) deviceTelemetry(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	var sample sdk.Telemetry
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing[token] {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	for id, t := range b.credentials {
		if t == token {
			b.record(id, sample)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid device token")
}

func (b *Backend) getAttributes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	attrs := []sdk.Attribute{}
	for k, v := range b.attributes[id] {
		attrs = append(attrs, sdk.Attribute{Key: k, Value: v, LastUpdateTs: time.Now().UnixMilli()})
	}
	writeJSON(w, attrs)
}

func (b *Backend) saveAttributes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var attrs sdk.Metadata
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attributes[id] == nil {
		b.attributes[id] = sdk.Metadata{}
	}
	for k, v := range attrs {
		b.attributes[id][k] = v
	}
	w.WriteHeader(http.StatusOK)
}

// The helpers below must be called with mu held.

func (b *Backend) addProfile(name string) sdk.DeviceProfile {
	p := sdk.DeviceProfile{ID: b.newID(sdk.EntityDeviceProfile), Name: name, Type: "DEFAULT"}
	b.profiles = append(b.profiles, p)
	return p
}

func (b *Backend) addDevice(name, typ, label string) sdk.Device {
	d := sdk.Device{ID: b.newID(sdk.EntityDevice), Name: name, Type: typ, Label: label}
	for _, p := range b.profiles {
		if p.Name == typ {
			d.DeviceProfileID = p.ID
		}
	}
	b.devices = append(b.devices, d)
	b.credentials[d.ID.ID] = GenerateUUID(b.t)
	return d
}

func (b *Backend) addAsset(name, typ, label string) sdk.Asset {
	a := sdk.Asset{ID: b.newID(sdk.EntityAsset), Name: name, Type: typ, Label: label}
	b.assets = append(b.assets, a)
	return a
}

func (b *Backend) record(id string, sample sdk.Telemetry) {
	b.samples[id] = append(b.samples[id], sample)
	for k, v := range sample {
		b.setLatest(id, k, fmt.Sprint(v))
	}
}

func (b *Backend) setLatest(id, key, value string) {
	if b.latest[id] == nil {
		b.latest[id] = make(map[string]string)
	}
	b.latest[id][key] = value
}

func (b *Backend) newID(entityType string) sdk.EntityID {
	return sdk.EntityID{ID: GenerateUUID(b.t), EntityType: entityType}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", sdk.CTJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", sdk.CTJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"message":   msg,
		"errorCode": 10,
	})
}
