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

package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/poller"
	"github.com/carverauto/fleetradar/pkg/registry"
)

const defaultInterval = time.Minute

// Controller scans the registry on its own interval and emits one alert per
// offline episode edge. The acknowledgement flag flips after dispatch
// whatever the delivery outcome, so a failed send is never retried.
type Controller struct {
	source   DeviceSource
	notifier Notifier
	interval time.Duration
	clock    poller.Clock
	logger   logger.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewController creates an alert controller. A nil clock uses the wall clock.
func NewController(source DeviceSource, notifier Notifier, interval time.Duration, clock poller.Clock, log logger.Logger) *Controller {
	if interval <= 0 {
		interval = defaultInterval
	}

	if clock == nil {
		clock = poller.RealClock()
	}

	return &Controller{
		source:   source,
		notifier: notifier,
		interval: interval,
		clock:    clock,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Start runs alert cycles until ctx is cancelled or Stop is called.
func (c *Controller) Start(ctx context.Context) error {
	c.wg.Add(1)
	defer c.wg.Done()

	c.logger.Info().Dur("interval", c.interval).Msg("Starting alert controller")

	return poller.RunLoop(ctx, c.clock, c.interval, c.done, func(ctx context.Context) {
		c.RunOnce(ctx)
	})
}

// Stop ends the loop and waits for an in-flight cycle.
func (c *Controller) Stop(_ context.Context) error {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.wg.Wait()

	return nil
}

// RunOnce performs a single alert cycle and returns the number of alerts dispatched.
func (c *Controller) RunOnce(ctx context.Context) int {
	now := c.clock.Now()
	sent := 0

	for _, snap := range c.source.Snapshot() {
		var kind Kind

		switch {
		case snap.State == registry.StateOffline && !snap.AlertAcknowledged:
			kind = KindOffline
		case snap.AlertAcknowledged && snap.State != registry.StateOffline:
			kind = KindRecovered
		default:
			continue
		}

		alert := Alert{
			Kind:      kind,
			DeviceID:  snap.ID,
			LastSeen:  snap.LastSeen,
			Timestamp: now,
		}

		if err := c.notifier.Notify(ctx, alert); err != nil {
			c.logger.Warn().Err(err).
				Str("device_id", snap.ID).
				Str("kind", string(kind)).
				Msg("Alert delivery incomplete")
		}

		if kind == KindOffline {
			c.source.MarkAlertSent(snap.ID)
		} else {
			c.source.ClearAlertAcknowledgement(snap.ID)
		}

		recordAlert(ctx, kind)

		sent++
	}

	if sent > 0 {
		c.logger.Debug().Int("alerts", sent).Msg("Alert cycle complete")
	}

	return sent
}
