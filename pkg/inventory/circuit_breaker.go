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
	"sync"
	"time"

	"github.com/carverauto/fleetradar/pkg/models"
)

// BreakerState is the state of the scanner circuit.
type BreakerState int

const (
	// BreakerClosed lets every fetch through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects fetches without contacting the scanner.
	BreakerOpen
	// BreakerHalfOpen admits a single trial fetch.
	BreakerHalfOpen
)

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig controls when the client stops calling a failing scanner.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failed fetches that opens
	// the circuit. Negative disables the breaker.
	FailureThreshold int `json:"failure_threshold,omitempty"`
	// OpenTimeout is how long fetches are rejected before a trial fetch.
	OpenTimeout models.Duration `json:"open_timeout,omitempty"`
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = defaultFailureThreshold
	}

	if c.OpenTimeout <= 0 {
		c.OpenTimeout = models.Duration(defaultOpenTimeout)
	}

	return c
}

// transitionFunc observes a state change; failures is the consecutive count
// that caused it.
type transitionFunc func(from, to BreakerState, failures int)

// breaker tracks consecutive scanner failures. A poll cycle never overlaps
// itself, but the breaker still locks so State can be read from elsewhere.
type breaker struct {
	config   BreakerConfig
	now      func() time.Time
	onChange transitionFunc

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	trial    bool
}

func newBreaker(config BreakerConfig, onChange transitionFunc) *breaker {
	return &breaker{
		config:   config.withDefaults(),
		now:      time.Now,
		onChange: onChange,
	}
}

// allow reports whether a fetch may go to the scanner. It returns an error
// wrapping ErrCircuitOpen while the circuit rejects fetches.
func (b *breaker) allow() error {
	if b.config.FailureThreshold < 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		retryIn := b.config.OpenTimeout.Std() - b.now().Sub(b.openedAt)
		if retryIn > 0 {
			return fmt.Errorf("%w: retry in %s", ErrCircuitOpen, retryIn.Round(time.Second))
		}

		b.transition(BreakerHalfOpen)
		b.trial = true

		return nil
	case BreakerHalfOpen:
		if b.trial {
			return fmt.Errorf("%w: trial fetch in flight", ErrCircuitOpen)
		}

		b.trial = true

		return nil
	default:
		return nil
	}
}

// record feeds a fetch result back. Cancellation of the caller's context is
// not the scanner's fault and is ignored.
func (b *breaker) record(err error) {
	if b.config.FailureThreshold < 0 || errors.Is(err, context.Canceled) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.trial = false

	if err == nil {
		b.failures = 0
		b.transition(BreakerClosed)

		return
	}

	b.failures++

	if b.state == BreakerHalfOpen || b.failures >= b.config.FailureThreshold {
		b.openedAt = b.now()
		b.transition(BreakerOpen)
	}
}

// transition must be called with mu held.
func (b *breaker) transition(to BreakerState) {
	from := b.state
	if from == to {
		return
	}

	b.state = to

	if b.onChange != nil {
		b.onChange(from, to, b.failures)
	}
}

func (b *breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}
