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
	"fmt"
	"net/url"
	"time"

	"github.com/carverauto/fleetradar/pkg/models"
)

const (
	ScannerRDM    = "rdm"
	ScannerGolbat = "golbat"

	rdmDevicesEndpoint    = "api/get_data?show_devices=true"
	golbatDevicesEndpoint = "api/devices/all"

	defaultRequestTimeout = 30 * time.Second
)

// Config describes how to reach the scanner.
type Config struct {
	Type     string          `json:"type"`
	URL      string          `json:"url"`
	Username string          `json:"username,omitempty"`
	Password string          `json:"password,omitempty"`
	Secret   string          `json:"secret,omitempty"`
	Timeout  models.Duration `json:"timeout,omitempty"`
	Breaker  BreakerConfig   `json:"circuit_breaker,omitempty"`
}

// Validate checks the scanner settings and fills the default timeout.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errURLRequired
	}

	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid scanner url: %w", err)
	}

	switch c.Type {
	case ScannerRDM:
		if c.Username == "" || c.Password == "" {
			return errCredentialsRequired
		}
	case ScannerGolbat:
		if c.Secret == "" {
			return errSecretRequired
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownScannerType, c.Type)
	}

	if c.Timeout <= 0 {
		c.Timeout = models.Duration(defaultRequestTimeout)
	}

	return nil
}
