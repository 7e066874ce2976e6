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

// Package poller drives the fetch, classify and reconcile cycle.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/fleetradar/pkg/inventory"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/registry"
)

const (
	defaultUpdateInterval = 5 * time.Minute
	defaultRequestTimeout = 30 * time.Second
)

// Config holds the poll cycle settings.
type Config struct {
	UpdateInterval time.Duration
	RequestTimeout time.Duration
	IgnoredDevices []string
	Audiences      []*registry.Audience
}

// Dependencies are the collaborators a Poller drives.
type Dependencies struct {
	Fetcher    inventory.Fetcher
	Registry   *registry.Registry
	Reconciler Reconciler
	Clock      Clock
}

// Poller fetches the device snapshot, folds it into the registry and then
// reconciles every audience, one cycle at a time.
type Poller struct {
	config     Config
	fetcher    inventory.Fetcher
	registry   *registry.Registry
	reconciler Reconciler
	clock      Clock
	logger     logger.Logger
	ignored    map[string]struct{}
	audiences  []*registry.Audience

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a poller. A nil Reconciler only updates the registry.
func New(cfg Config, deps Dependencies, log logger.Logger) (*Poller, error) {
	if deps.Fetcher == nil {
		return nil, errNoFetcher
	}

	if deps.Registry == nil {
		return nil, errNoRegistry
	}

	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = defaultUpdateInterval
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	if deps.Clock == nil {
		deps.Clock = realClock{}
	}

	ignored := make(map[string]struct{}, len(cfg.IgnoredDevices))
	for _, id := range cfg.IgnoredDevices {
		ignored[id] = struct{}{}
	}

	audiences := append([]*registry.Audience(nil), cfg.Audiences...)
	sort.SliceStable(audiences, func(i, j int) bool {
		return audiences[i].ID < audiences[j].ID
	})

	return &Poller{
		config:     cfg,
		fetcher:    deps.Fetcher,
		registry:   deps.Registry,
		reconciler: deps.Reconciler,
		clock:      deps.Clock,
		logger:     log,
		ignored:    ignored,
		audiences:  audiences,
		done:       make(chan struct{}),
	}, nil
}

// Start polls immediately and then every UpdateInterval after the previous
// cycle finished. It blocks until ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.wg.Add(1)
	defer p.wg.Done()

	p.logger.Info().
		Dur("interval", p.config.UpdateInterval).
		Int("audiences", len(p.audiences)).
		Msg("Starting poller")

	return RunLoop(ctx, p.clock, p.config.UpdateInterval, p.done, func(ctx context.Context) {
		if err := p.PollOnce(ctx); err != nil {
			p.logger.Error().Err(err).Msg("Poll cycle failed")
		}
	})
}

// Stop ends the loop and waits for the in-flight cycle.
func (p *Poller) Stop(_ context.Context) error {
	p.closeOnce.Do(func() {
		close(p.done)
	})

	p.wg.Wait()

	return nil
}

// PollOnce runs one cycle. A fetch failure leaves the registry untouched and
// skips reconciliation. Reconciliation failures of one audience never stop
// the others.
func (p *Poller) PollOnce(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, p.config.RequestTimeout)
	snapshot, err := p.fetcher.FetchDevices(fetchCtx)
	cancel()

	if err != nil {
		outcome := outcomeFetchError
		if errors.Is(err, inventory.ErrCircuitOpen) {
			outcome = outcomeScannerDown
		}

		recordCycle(ctx, outcome)

		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	skipped := 0

	for id, status := range snapshot {
		if _, ok := p.ignored[id]; ok {
			skipped++
			continue
		}

		p.registry.Upsert(id, status.LastUpdate)
	}

	recordDevicesSeen(ctx, len(snapshot)-skipped)

	p.logger.Debug().
		Int("devices", len(snapshot)).
		Int("ignored", skipped).
		Int("tracked", p.registry.Len()).
		Msg("Device snapshot applied")

	if p.reconciler == nil {
		recordCycle(ctx, outcomeSuccess)
		return nil
	}

	var errs []error

	for _, audience := range p.audiences {
		if err := p.reconciler.Reconcile(ctx, audience); err != nil {
			errs = append(errs, fmt.Errorf("audience %s: %w", audience.ID, err))
		}
	}

	if len(errs) > 0 {
		recordCycle(ctx, outcomeReconcileFail)
		return fmt.Errorf("%w: %w", ErrReconcileFailed, errors.Join(errs...))
	}

	recordCycle(ctx, outcomeSuccess)

	return nil
}
