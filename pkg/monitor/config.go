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

// Package monitor assembles the fleet presence monitor from its parts.
package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/fleetradar/pkg/config"
	"github.com/carverauto/fleetradar/pkg/inventory"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/messaging/discord"
	"github.com/carverauto/fleetradar/pkg/models"
	"github.com/carverauto/fleetradar/pkg/natsutil"
	"github.com/carverauto/fleetradar/pkg/registry"
)

const (
	defaultServiceName      = "fleetradar"
	defaultUpdateInterval   = 5 * time.Minute
	defaultAlertInterval    = time.Minute
	defaultWarningThreshold = 5 * time.Minute
	defaultOfflineThreshold = 15 * time.Minute
	defaultRequestTimeout   = 30 * time.Second
)

var (
	errDuplicateAudience = errors.New("duplicate audience id")
	errAudienceID        = errors.New("audience id is required")
	errNegativeDuration  = errors.New("durations must not be negative")
)

// Config is the monitor's configuration file.
type Config struct {
	ServiceName            string               `json:"service_name"`
	Scanner                inventory.Config     `json:"scanner"`
	UpdateInterval         models.Duration      `json:"update_interval"`
	AlertInterval          models.Duration      `json:"alert_interval"`
	WarningThreshold       models.Duration      `json:"warning_threshold"`
	OfflineThreshold       models.Duration      `json:"offline_threshold"`
	RequestTimeout         models.Duration      `json:"request_timeout"`
	Timezone               string               `json:"timezone,omitempty"`
	IgnoredDevices         []string             `json:"ignored_devices"`
	ClearMessagesOnStartup bool                 `json:"clear_messages_on_startup"`
	UserAlerts             []string             `json:"user_alerts"`
	Audiences              []*registry.Audience `json:"audiences"`
	Discord                discord.Config       `json:"discord"`
	NATS                   *natsutil.Config     `json:"nats,omitempty"`
	Logging                *logger.Config       `json:"logging,omitempty"`
	Metrics                *logger.OTelConfig   `json:"metrics,omitempty"`

	location *time.Location
}

// Validate fills defaults and rejects structurally invalid settings.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}

	if err := c.Scanner.Validate(); err != nil {
		return fmt.Errorf("%w: scanner: %w", config.ErrInvalidConfig, err)
	}

	if c.Discord.Token == "" {
		return fmt.Errorf("%w: discord.token is required", config.ErrInvalidConfig)
	}

	for _, d := range []models.Duration{
		c.UpdateInterval, c.AlertInterval, c.WarningThreshold, c.OfflineThreshold, c.RequestTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %w", config.ErrInvalidConfig, errNegativeDuration)
		}
	}

	setDefault(&c.UpdateInterval, defaultUpdateInterval)
	setDefault(&c.AlertInterval, defaultAlertInterval)
	setDefault(&c.WarningThreshold, defaultWarningThreshold)
	setDefault(&c.OfflineThreshold, defaultOfflineThreshold)
	setDefault(&c.RequestTimeout, defaultRequestTimeout)

	seen := make(map[string]struct{}, len(c.Audiences))

	for i, a := range c.Audiences {
		if a == nil || a.ID == "" {
			return fmt.Errorf("%w: audiences[%d]: %w", config.ErrInvalidConfig, i, errAudienceID)
		}

		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: %w: %s", config.ErrInvalidConfig, errDuplicateAudience, a.ID)
		}

		seen[a.ID] = struct{}{}
	}

	c.location = time.Local

	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("%w: timezone: %w", config.ErrInvalidConfig, err)
		}

		c.location = loc
	}

	return nil
}

// Warnings lists settings that are valid but probably not what was meant.
func (c *Config) Warnings() []string {
	var out []string

	if c.OfflineThreshold < c.WarningThreshold {
		out = append(out, "offline_threshold is below warning_threshold; no device will ever be classified as warning")
	}

	for _, a := range c.Audiences {
		if a.SummaryChannelID == "" {
			out = append(out, fmt.Sprintf("audience %s has no summary_channel_id and will not receive summaries", a.ID))
		}
	}

	if len(c.UserAlerts) == 0 && !c.NATS.Enabled() {
		out = append(out, "no user_alerts and no nats sink configured; alerts will only be logged")
	}

	return out
}

// Thresholds returns the classification windows.
func (c *Config) Thresholds() registry.Thresholds {
	return registry.Thresholds{
		Warning: c.WarningThreshold.Std(),
		Offline: c.OfflineThreshold.Std(),
	}
}

// Location is the time zone used in rendered timestamps.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}

	return c.location
}

func setDefault(d *models.Duration, def time.Duration) {
	if *d == 0 {
		*d = models.Duration(def)
	}
}
