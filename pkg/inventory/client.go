/*
 * Copyright 2025 Carver Automation Corporation.
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

package inventory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/carverauto/fleetradar/pkg/logger"
)

// Client fetches device sightings from an RDM or Golbat scanner. After
// repeated failures its circuit breaker rejects fetches for a while so a down
// scanner is not called every cycle.
type Client struct {
	config     Config
	httpClient HTTPClient
	breaker    *breaker
	host       string
	logger     logger.Logger
}

var _ Fetcher = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a scanner client. cfg must already be validated.
func NewClient(cfg Config, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		config: cfg,
		logger: log,
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		c.host = u.Host
	}

	c.breaker = newBreaker(cfg.Breaker, c.breakerChanged)

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout.Std()}
	}

	return c
}

// FetchDevices implements Fetcher. Every failure is wrapped in ErrFetch; while
// the breaker is open the error also wraps ErrCircuitOpen.
func (c *Client) FetchDevices(ctx context.Context) (Snapshot, error) {
	if err := c.breaker.allow(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	snapshot, err := c.fetch(ctx)
	c.breaker.record(err)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	c.logger.Debug().
		Str("scanner", c.config.Type).
		Int("device_count", len(snapshot)).
		Msg("Fetched devices from scanner")

	return snapshot, nil
}

func (c *Client) fetch(ctx context.Context) (Snapshot, error) {
	if timeout := c.config.Timeout.Std(); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return nil, fmt.Errorf("%w: %d, response: %s", errUnexpectedStatusCode, resp.StatusCode, string(body))
	}

	switch c.config.Type {
	case ScannerRDM:
		return decodeRDM(resp.Body)
	case ScannerGolbat:
		return decodeGolbat(resp.Body)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownScannerType, c.config.Type)
	}
}

// BreakerState reports the scanner circuit state.
func (c *Client) BreakerState() BreakerState {
	return c.breaker.State()
}

func (c *Client) breakerChanged(from, to BreakerState, failures int) {
	recordBreakerTransition(context.Background(), c.config.Type, to)

	event := c.logger.Info()
	if to == BreakerOpen {
		event = c.logger.Warn()
	}

	event.
		Str("scanner", c.config.Type).
		Str("scanner_host", c.host).
		Str("from", from.String()).
		Str("to", to.String()).
		Int("consecutive_failures", failures).
		Msg("Scanner circuit breaker changed state")
}

func (c *Client) newRequest(ctx context.Context) (*http.Request, error) {
	endpoint := golbatDevicesEndpoint
	if c.config.Type == ScannerRDM {
		endpoint = rdmDevicesEndpoint
	}

	reqURL := strings.TrimRight(c.config.URL, "/") + "/" + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	switch c.config.Type {
	case ScannerRDM:
		req.Header.Set("Authorization", "Bearer "+bearerToken(c.config.Username, c.config.Password))
	case ScannerGolbat:
		req.Header.Set("X-Golbat-Secret", c.config.Secret)
	}

	return req, nil
}

func bearerToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

type rdmResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   *struct {
		Devices []struct {
			UUID     string `json:"uuid"`
			LastSeen int64  `json:"last_seen"`
		} `json:"devices"`
	} `json:"data"`
}

func decodeRDM(r io.Reader) (Snapshot, error) {
	var body rdmResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rdm response: %w", err)
	}

	if body.Status == "error" {
		return nil, fmt.Errorf("%w: %s", errScannerError, body.Error)
	}

	if body.Data == nil || body.Data.Devices == nil {
		return nil, errMissingDevices
	}

	snapshot := make(Snapshot, len(body.Data.Devices))

	for _, d := range body.Data.Devices {
		if d.UUID == "" {
			continue
		}

		snapshot[d.UUID] = DeviceStatus{LastUpdate: d.LastSeen}
	}

	return snapshot, nil
}

type golbatResponse struct {
	Devices map[string]struct {
		LastUpdate int64 `json:"last_update"`
	} `json:"devices"`
}

func decodeGolbat(r io.Reader) (Snapshot, error) {
	var body golbatResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode golbat response: %w", err)
	}

	if body.Devices == nil {
		return nil, errMissingDevices
	}

	snapshot := make(Snapshot, len(body.Devices))

	for id, d := range body.Devices {
		snapshot[id] = DeviceStatus{LastUpdate: d.LastUpdate}
	}

	return snapshot, nil
}
