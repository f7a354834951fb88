package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/common"
	"github.com/marketmemphis/mdash/internal/logging"
)

const (
	pathRegister = "/api/users/register/"
	pathLogin    = "/api/users/login/"
	pathProfile  = "/api/users/profile/"
	pathBrands   = "/api/users/brands/"
	pathCreate   = "/api/users/brands/create/"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the backend at baseURL. A zero timeout
// leaves requests bounded only by their context.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "http-client"),
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// request describes one backend call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	// authenticated calls require token and turn 401 into ErrSessionExpired
	authenticated bool
	token         string
}

func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	if r.authenticated && r.token == "" {
		return ErrMissingCredential
	}

	// r.path carries already escaped segments
	target := c.baseURL.String() + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", r.op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.authenticated {
		req.Header.Set(common.AuthHeaderName, common.AuthHeaderValue(r.token))
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", r.op, ctxErr)
		}
		c.log.Warn(ctx, "request failed", "op", r.op, "request_id", requestID, "err", err)
		return fmt.Errorf("%s: %w: %v", r.op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", r.op, err)
	}

	c.log.Debug(ctx, "request done",
		"op", r.op,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode == http.StatusUnauthorized && r.authenticated {
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Op: r.op, Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", r.op, err)
	}
	return nil
}

// errorBody is the backend error shape: either field errors or a message.
type errorBody struct {
	Errors  map[string][]string `json:"errors"`
	Message string              `json:"message"`
	Detail  string              `json:"detail"`
}

// errorMessage renders field errors as "field: msg1, msg2" lines, sorted by
// field name, falling back to message or detail. Unparseable bodies yield "".
func errorMessage(data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	if len(eb.Errors) > 0 {
		fields := make([]string, 0, len(eb.Errors))
		for f := range eb.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		lines := make([]string, 0, len(fields))
		for _, f := range fields {
			lines = append(lines, fmt.Sprintf("%s: %s", f, strings.Join(eb.Errors[f], ", ")))
		}
		return strings.Join(lines, "\n")
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Detail
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	return c.do(ctx, request{op: "Registration", method: http.MethodPost, path: pathRegister, body: reg}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var res models.LoginResult
	if err := c.do(ctx, request{op: "Login", method: http.MethodPost, path: pathLogin, body: creds}, &res); err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, errors.New("User data not found in response")
	}
	if res.Token == "" {
		return nil, errors.New("Token not found in response")
	}
	return &res, nil
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.Profile, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		op:            "Profile fetch",
		method:        http.MethodGet,
		path:          pathProfile,
		authenticated: true,
		token:         token,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return models.ParseProfile(raw)
}

func (c *HTTPClient) ListBrands(ctx context.Context, token string) ([]models.Brand, error) {
	var res models.BrandList
	err := c.do(ctx, request{
		op:            "Brand list",
		method:        http.MethodGet,
		path:          pathBrands,
		authenticated: true,
		token:         token,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Brands == nil {
		res.Brands = []models.Brand{}
	}
	return res.Brands, nil
}

func (c *HTTPClient) CreateBrand(ctx context.Context, token string) (string, error) {
	var res models.CreatedBrand
	err := c.do(ctx, request{
		op:            "Brand creation",
		method:        http.MethodPost,
		path:          pathCreate,
		authenticated: true,
		token:         token,
	}, &res)
	if err != nil {
		return "", err
	}
	if res.BrandID == "" {
		return "", errors.New("Brand creation: brand_id missing in response")
	}
	return res.BrandID, nil
}

func (c *HTTPClient) RenameBrand(ctx context.Context, token, brandID, name string) (*models.Brand, error) {
	var res models.Brand
	err := c.do(ctx, request{
		op:            "Brand rename",
		method:        http.MethodPatch,
		path:          pathBrands + url.PathEscape(brandID) + "/update/",
		query:         url.Values{"newName": {name}},
		body:          map[string]string{"name": name},
		authenticated: true,
		token:         token,
	}, &res)
	if err != nil {
		return nil, err
	}
	// older backends answer with a bare acknowledgement
	if res.ID == "" {
		res.ID = brandID
	}
	if res.Name == "" {
		res.Name = name
	}
	return &res, nil
}

func (c *HTTPClient) SocialDetails(ctx context.Context, token, brandID string) ([]models.SocialConnection, error) {
	var res models.SocialDetails
	err := c.do(ctx, request{
		op:            "Social details",
		method:        http.MethodGet,
		path:          pathBrands + url.PathEscape(brandID) + "/social-details/",
		authenticated: true,
		token:         token,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Connections == nil {
		res.Connections = []models.SocialConnection{}
	}
	return res.Connections, nil
}
