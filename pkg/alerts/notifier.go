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
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/messaging"
)

const (
	notifierDirectMessage = "direct_message"

	defaultDirectMessagesPerSecond = 5
	defaultDirectMessageBurst      = 5
	defaultDirectMessageTimeout    = 30 * time.Second
)

// DirectMessageNotifier sends every alert privately to each subscribed user.
type DirectMessageNotifier struct {
	messenger messaging.DirectMessenger
	users     []string
	limiter   *rate.Limiter
	timeout   time.Duration
	location  *time.Location
	logger    logger.Logger
}

var _ Notifier = (*DirectMessageNotifier)(nil)

// DirectMessageOption customizes a DirectMessageNotifier.
type DirectMessageOption func(*DirectMessageNotifier)

// WithRateLimit caps outgoing direct messages.
func WithRateLimit(perSecond float64, burst int) DirectMessageOption {
	return func(n *DirectMessageNotifier) {
		n.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRequestTimeout bounds each direct message send. Non-positive values keep the default.
func WithRequestTimeout(timeout time.Duration) DirectMessageOption {
	return func(n *DirectMessageNotifier) {
		if timeout > 0 {
			n.timeout = timeout
		}
	}
}

// WithLocation renders alert timestamps in loc.
func WithLocation(loc *time.Location) DirectMessageOption {
	return func(n *DirectMessageNotifier) {
		n.location = loc
	}
}

func NewDirectMessageNotifier(
	messenger messaging.DirectMessenger, users []string, log logger.Logger, opts ...DirectMessageOption,
) *DirectMessageNotifier {
	n := &DirectMessageNotifier{
		messenger: messenger,
		users:     users,
		limiter:   rate.NewLimiter(rate.Limit(defaultDirectMessagesPerSecond), defaultDirectMessageBurst),
		timeout:   defaultDirectMessageTimeout,
		logger:    log,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Notify messages every user. A failure for one user is logged and counted,
// then the remaining users are still tried; the joined failures are returned.
func (n *DirectMessageNotifier) Notify(ctx context.Context, alert Alert) error {
	text := FormatAlert(alert, n.location)

	var errs []error

	for _, user := range n.users {
		if err := n.limiter.Wait(ctx); err != nil {
			return errors.Join(append(errs, fmt.Errorf("%w: %w", messaging.ErrDeliveryFailed, err))...)
		}

		if err := n.send(ctx, user, text); err != nil {
			recordDeliveryFailure(ctx, notifierDirectMessage)
			n.logger.Warn().Err(err).
				Str("user_id", user).
				Str("device_id", alert.DeviceID).
				Str("kind", string(alert.Kind)).
				Msg("Failed to send alert direct message")

			errs = append(errs, fmt.Errorf("user %s: %w", user, err))
		}
	}

	return errors.Join(errs...)
}

func (n *DirectMessageNotifier) send(ctx context.Context, user, text string) error {
	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	return n.messenger.SendDirectMessage(sendCtx, user, text)
}

// FormatAlert renders the direct message text. A nil loc keeps the timestamp's location.
func FormatAlert(alert Alert, loc *time.Location) string {
	ts := alert.Timestamp
	if loc != nil {
		ts = ts.In(loc)
	}

	stamp := "[" + ts.Format(messaging.TimestampLayout) + "]"

	if alert.Kind == KindRecovered {
		return stamp + " Device: " + alert.DeviceID + " has come back online"
	}

	return stamp + " Device: " + alert.DeviceID + " is offline!"
}

// MultiNotifier fans an alert out to several notifiers in order.
type MultiNotifier []Notifier

var _ Notifier = MultiNotifier(nil)

func (m MultiNotifier) Notify(ctx context.Context, alert Alert) error {
	var errs []error

	for _, n := range m {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// LogNotifier writes every alert to the log.
type LogNotifier struct {
	Logger logger.Logger
}

func (n LogNotifier) Notify(_ context.Context, alert Alert) error {
	n.Logger.Info().
		Str("device_id", alert.DeviceID).
		Str("kind", string(alert.Kind)).
		Int64("last_seen", alert.LastSeen).
		Msg("Device alert")

	return nil
}
