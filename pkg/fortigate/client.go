/*
 * Copyright 2025 Wirelark Labs
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package fortigate provides a read-only client for the FortiGate REST
// monitor API with normalized errors and read-through response caching.
package fortigate

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wirelark/fortidash/pkg/cache"
	"github.com/wirelark/fortidash/pkg/logger"
	"github.com/wirelark/fortidash/pkg/models"
)

const (
	apiRoot        = "/api/v2/"
	defaultPort    = 443
	defaultTimeout = 30 * time.Second

	maxErrorBodyBytes = 4 * 1024
)

// Config holds the connection settings for one appliance.
type Config struct {
	Host     string          `json:"host"`
	Port     int             `json:"port"`
	APIToken string          `json:"api_token"`
	Timeout  models.Duration `json:"timeout"`

	// Appliances commonly run self-signed certificates; verification stays
	// on unless a deployment opts out.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// Client issues authenticated GETs against the appliance. Idempotent GET
// responses are cached in the injected long-TTL cache keyed by method and
// endpoint, so a fan-out cycle repeated within the TTL costs no network I/O.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      *cache.Cache
	logger     logger.Logger
}

// NewClient builds a client from config. The cache may not be nil; callers
// own its lifecycle.
func NewClient(cfg *Config, apiCache *cache.Cache, log logger.Logger) *Client {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // deployment opt-in
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: fmt.Sprintf("https://%s:%d", cfg.Host, port),
		token:   cfg.APIToken,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		cache:  apiCache,
		logger: log,
	}
}

// Configured reports whether an API token is available. Callers use this to
// abort a cycle before fanning out requests that cannot succeed.
func (c *Client) Configured() bool {
	return c.token != ""
}

// Get fetches endpoint and returns the raw JSON body. The endpoint may omit
// the /api/v2 prefix. Responses are served from cache when present.
func (c *Client) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	if c.token == "" {
		return nil, &APIError{Kind: KindUnconfigured}
	}

	path := normalizeEndpoint(endpoint)
	cacheKey := "GET:" + path

	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(json.RawMessage), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, newTransportError(err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newHTTPError(resp.StatusCode, extractErrorMessage(resp.Body))
		c.logger.Warn().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("kind", string(apiErr.Kind)).
			Msg("FortiGate request rejected")

		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(err)
	}

	c.cache.Set(cacheKey, json.RawMessage(body))

	c.logger.Debug().
		Str("endpoint", path).
		Int("bytes", len(body)).
		Msg("FortiGate response fetched")

	return body, nil
}

// normalizeEndpoint maps bare monitor paths onto the versioned API root.
func normalizeEndpoint(endpoint string) string {
	endpoint = "/" + strings.TrimLeft(endpoint, "/")

	if strings.HasPrefix(endpoint, apiRoot) {
		return endpoint
	}

	return apiRoot + strings.TrimLeft(endpoint, "/")
}

// extractErrorMessage pulls a human-readable message out of the FortiOS
// error envelope when one is present.
func extractErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return ""
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}

	if envelope.Message != "" {
		return envelope.Message
	}

	if len(envelope.Error) > 0 {
		return strings.Trim(string(envelope.Error), `"`)
	}

	return ""
}
