// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/absmach/fieldsim/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// CTJSON represents JSON content type.
	CTJSON = "application/json"

	// BearerPrefix prefixes the session token in the authorization header.
	BearerPrefix = "Bearer "

	// AuthHeader carries the session credential on authenticated calls.
	AuthHeader = "X-Authorization"

	// MaxPageSize is the page size used when listing entities in one call.
	MaxPageSize = 1000

	// DefaultRequestTimeout bounds every backend call when Config.RequestTimeout is unset.
	DefaultRequestTimeout = 10 * time.Second

	// ServerScope is the attribute scope used for field and device metadata.
	ServerScope = "SERVER_SCOPE"

	// ContainsRelation is the relation type linking a field to its devices.
	ContainsRelation = "Contains"

	// CommonTypeGroup is the relation type group used by ContainsRelation.
	CommonTypeGroup = "COMMON"
)

// Entity kinds as reported by the backend.
const (
	EntityDevice        = "DEVICE"
	EntityAsset         = "ASSET"
	EntityDeviceProfile = "DEVICE_PROFILE"
	EntityDashboard     = "DASHBOARD"
)

var _ SDK = (*tbSDK)(nil)

var (
	// ErrFailedCreation indicates that entity creation failed.
	ErrFailedCreation = errors.New("failed to create entity")

	// ErrFailedList indicates that entities list failed.
	ErrFailedList = errors.New("failed to list entities")

	// ErrFailedFetch indicates that fetching of entity data failed.
	ErrFailedFetch = errors.New("failed to fetch entity")

	// ErrFailedSend indicates that a telemetry sample was rejected.
	ErrFailedSend = errors.New("failed to send telemetry")

	// ErrNoSession indicates an authenticated call made before a successful login.
	ErrNoSession = errors.New("no session, login first")
)

// PageMetadata holds the paging and filter parameters of list calls.
type PageMetadata struct {
	Page         uint64 `json:"page"`
	PageSize     uint64 `json:"pageSize"`
	Type         string `json:"type,omitempty"`
	TextSearch   string `json:"textSearch,omitempty"`
	SortProperty string `json:"sortProperty,omitempty"`
	SortOrder    string `json:"sortOrder,omitempty"`
}

// Metadata represents arbitrary JSON.
type Metadata map[string]interface{}

// Telemetry is one flat sample keyed by metric name.
type Telemetry map[string]interface{}

// SDK contains the backend API used by provisioning, diagnostics and the simulator.
//
//go:generate mockery --name SDK --output=../mocks --filename sdk.go --quiet --note "Copyright (c) Abstract Machines"
type SDK interface {
	// CreateToken logs in and keeps the session for later authenticated calls.
	//
	// example:
	//  token, _ := sdk.CreateToken(ctx, sdk.Login{Username: "tenant@thingsboard.org", Password: "tenant"})
	//  fmt.Println(token.AccessToken)
	CreateToken(ctx context.Context, lt Login) (Token, errors.SDKError)

	// RefreshToken exchanges the stored refresh token for a new session.
	RefreshToken(ctx context.Context) (Token, errors.SDKError)

	// Devices returns a page of tenant devices, optionally filtered by type.
	//
	// example:
	//  pm := sdk.PageMetadata{PageSize: sdk.MaxPageSize, Type: "SI Water Meter"}
	//  page, _ := sdk.Devices(ctx, pm)
	//  fmt.Println(page.Data)
	Devices(ctx context.Context, pm PageMetadata) (DevicesPage, errors.SDKError)

	// CreateDevice creates a device and returns it with its assigned id.
	CreateDevice(ctx context.Context, d Device) (Device, errors.SDKError)

	// DeviceCredentials returns the access credential of a device.
	DeviceCredentials(ctx context.Context, deviceID string) (DeviceCredentials, errors.SDKError)

	// DeviceProfiles returns a page of device profiles.
	DeviceProfiles(ctx context.Context, pm PageMetadata) (DeviceProfilesPage, errors.SDKError)

	// CreateDeviceProfile creates a device profile.
	CreateDeviceProfile(ctx context.Context, dp DeviceProfile) (DeviceProfile, errors.SDKError)

	// Assets returns a page of tenant assets, optionally filtered by type.
	Assets(ctx context.Context, pm PageMetadata) (AssetsPage, errors.SDKError)

	// CreateAsset creates an asset.
	CreateAsset(ctx context.Context, a Asset) (Asset, errors.SDKError)

	// Relations returns every relation whose source is from.
	Relations(ctx context.Context, from EntityID) ([]Relation, errors.SDKError)

	// FieldMembers returns the devices a field asset relates to.
	//
	// example:
	//  members, _ := sdk.FieldMembers(ctx, "fieldID")
	//  fmt.Println(members)
	FieldMembers(ctx context.Context, fieldID string) ([]EntityID, errors.SDKError)

	// CreateRelation creates a relation between two entities.
	CreateRelation(ctx context.Context, r Relation) errors.SDKError

	// SaveAttributes stores attributes of an entity in the given scope.
	SaveAttributes(ctx context.Context, entity EntityID, scope string, attrs Metadata) errors.SDKError

	// Attributes returns the attributes of an entity in the given scope.
	Attributes(ctx context.Context, entity EntityID, scope string) ([]Attribute, errors.SDKError)

	// LatestTelemetry returns the latest value of each requested key.
	// Keys without data are left out of the result.
	//
	// example:
	//  values, _ := sdk.LatestTelemetry(ctx, sdk.EntityID{ID: "deviceID", EntityType: sdk.EntityDevice}, "moisture")
	//  fmt.Println(values["moisture"])
	LatestTelemetry(ctx context.Context, entity EntityID, keys ...string) (map[string]string, errors.SDKError)

	// SendDeviceTelemetry submits a sample on behalf of a device using its access token.
	SendDeviceTelemetry(ctx context.Context, accessToken string, payload Telemetry) errors.SDKError

	// SendTelemetry submits a sample for an entity using the session.
	SendTelemetry(ctx context.Context, entity EntityID, payload Telemetry) errors.SDKError

	// Dashboards returns a page of tenant dashboards.
	Dashboards(ctx context.Context, pm PageMetadata) (DashboardsPage, errors.SDKError)
}

type tbSDK struct {
	backendURL string
	client     *http.Client
	now        func() time.Time

	mu    sync.RWMutex
	login Login
	token Token
}

// Config contains sdk configuration parameters.
type Config struct {
	BackendURL      string
	TLSVerification bool
	RequestTimeout  time.Duration

	// Transport replaces the default transport, mostly for tests.
	Transport http.RoundTripper
}

// NewSDK returns new backend SDK instance.
func NewSDK(conf Config) SDK {
	timeout := conf.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	transport := conf.Transport
	if transport == nil {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !conf.TLSVerification,
			},
		}
	}

	return &tbSDK{
		backendURL: conf.BackendURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		now: time.Now,
	}
}

// authRequest performs a call carrying the session token. An expired or
// rejected session is renewed once before giving up.
func (sdk *tbSDK) authRequest(ctx context.Context, method, reqURL string, data []byte, expectedRespCodes ...int) ([]byte, errors.SDKError) {
	token, sdkerr := sdk.sessionToken(ctx)
	if sdkerr != nil {
		return nil, sdkerr
	}

	_, body, sdkerr := sdk.processRequest(ctx, method, reqURL, token, data, nil, expectedRespCodes...)
	if sdkerr == nil || sdkerr.StatusCode() != http.StatusUnauthorized || !sdk.canLogin() {
		return body, sdkerr
	}

	if _, err := sdk.relogin(ctx); err != nil {
		return nil, err
	}
	token, sdkerr = sdk.sessionToken(ctx)
	if sdkerr != nil {
		return nil, sdkerr
	}
	_, body, sdkerr = sdk.processRequest(ctx, method, reqURL, token, data, nil, expectedRespCodes...)

	return body, sdkerr
}

func (sdk *tbSDK) processRequest(ctx context.Context, method, reqURL, token string, data []byte, headers map[string]string, expectedRespCodes ...int) (http.Header, []byte, errors.SDKError) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(data))
	if err != nil {
		return make(http.Header), []byte{}, errors.NewSDKError(err)
	}

	// Sets a default value for the Content-Type.
	// Overridden if Content-Type is passed in the headers arguments.
	req.Header.Add("Content-Type", CTJSON)

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if token != "" {
		req.Header.Set(AuthHeader, BearerPrefix+token)
	}

	resp, err := sdk.client.Do(req)
	if err != nil {
		return make(http.Header), []byte{}, errors.NewSDKError(err)
	}
	defer resp.Body.Close()

	sdkerr := errors.CheckError(resp, expectedRespCodes...)
	if sdkerr != nil {
		return make(http.Header), []byte{}, sdkerr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return make(http.Header), []byte{}, errors.NewSDKError(err)
	}

	return resp.Header, body, nil
}

func (sdk *tbSDK) withQueryParams(endpoint string, pm PageMetadata) string {
	return fmt.Sprintf("%s/%s?%s", sdk.backendURL, endpoint, pm.query())
}

func (pm PageMetadata) query() string {
	q := url.Values{}
	pageSize := pm.PageSize
	if pageSize == 0 {
		pageSize = MaxPageSize
	}
	q.Add("pageSize", strconv.FormatUint(pageSize, 10))
	q.Add("page", strconv.FormatUint(pm.Page, 10))
	if pm.Type != "" {
		q.Add("type", pm.Type)
	}
	if pm.TextSearch != "" {
		q.Add("textSearch", pm.TextSearch)
	}
	if pm.SortProperty != "" {
		q.Add("sortProperty", pm.SortProperty)
	}
	if pm.SortOrder != "" {
		q.Add("sortOrder", pm.SortOrder)
	}

	return q.Encode()
}
