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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetradar/pkg/models"
)

var errTestError = errors.New("test error")

type manualClock struct {
	now time.Time
}

func (m *manualClock) Now() time.Time { return m.now }

func (m *manualClock) Advance(d time.Duration) { m.now = m.now.Add(d) }

type transition struct {
	from, to BreakerState
	failures int
}

func newManualBreaker(cfg BreakerConfig) (*breaker, *manualClock, *[]transition) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	var seen []transition

	b := newBreaker(cfg, func(from, to BreakerState, failures int) {
		seen = append(seen, transition{from: from, to: to, failures: failures})
	})
	b.now = clock.Now

	return b, clock, &seen
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, clock, seen := newManualBreaker(BreakerConfig{FailureThreshold: 2, OpenTimeout: models.Duration(time.Minute)})

	require.NoError(t, b.allow())
	b.record(errTestError)
	require.NoError(t, b.allow())
	b.record(nil)
	assert.Equal(t, BreakerClosed, b.State(), "a success resets the count")

	b.record(errTestError)
	b.record(errTestError)
	assert.Equal(t, BreakerOpen, b.State())

	err := b.allow()
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "retry in 1m0s")

	clock.Advance(time.Minute)

	require.NoError(t, b.allow())
	assert.Equal(t, BreakerHalfOpen, b.State())
	require.ErrorIs(t, b.allow(), ErrCircuitOpen, "only one trial fetch")

	b.record(nil)
	assert.Equal(t, BreakerClosed, b.State())

	assert.Equal(t, []transition{
		{from: BreakerClosed, to: BreakerOpen, failures: 2},
		{from: BreakerOpen, to: BreakerHalfOpen, failures: 2},
		{from: BreakerHalfOpen, to: BreakerClosed, failures: 0},
	}, *seen)
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	b, clock, _ := newManualBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: models.Duration(time.Second)})

	b.record(errTestError)
	clock.Advance(time.Second)

	require.NoError(t, b.allow())
	b.record(errTestError)
	assert.Equal(t, BreakerOpen, b.State())
	require.ErrorIs(t, b.allow(), ErrCircuitOpen)
}

func TestBreaker_IgnoresCancellation(t *testing.T) {
	b, _, seen := newManualBreaker(BreakerConfig{FailureThreshold: 1})

	b.record(fmt.Errorf("shutdown: %w", context.Canceled))
	assert.Equal(t, BreakerClosed, b.State())
	assert.Empty(t, *seen)
}

func TestBreaker_Disabled(t *testing.T) {
	b, _, _ := newManualBreaker(BreakerConfig{FailureThreshold: -1})

	for range 10 {
		b.record(errTestError)
	}

	require.NoError(t, b.allow())
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerConfig_Defaults(t *testing.T) {
	cfg := BreakerConfig{}.withDefaults()
	assert.Equal(t, 5, cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.OpenTimeout.Std())
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", BreakerClosed.String())
	assert.Equal(t, "open", BreakerOpen.String())
	assert.Equal(t, "half-open", BreakerHalfOpen.String())
	assert.Equal(t, "unknown", BreakerState(9).String())
}
