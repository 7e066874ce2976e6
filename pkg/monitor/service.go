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

package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/fleetradar/pkg/alerts"
	"github.com/carverauto/fleetradar/pkg/inventory"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/messaging"
	"github.com/carverauto/fleetradar/pkg/messaging/discord"
	"github.com/carverauto/fleetradar/pkg/natsutil"
	"github.com/carverauto/fleetradar/pkg/poller"
	"github.com/carverauto/fleetradar/pkg/registry"
	"github.com/carverauto/fleetradar/pkg/summary"
	"github.com/carverauto/fleetradar/pkg/version"
)

var errNoMessenger = errors.New("monitor requires a messenger")

// Session is a chat connection that must be opened before use.
type Session interface {
	messaging.Messenger
	Open() error
	Close() error
}

// Dependencies lets callers and tests supply the external collaborators.
type Dependencies struct {
	Messenger Session
	Fetcher   inventory.Fetcher
	// Notifiers receive alerts in addition to the direct messages sent to user_alerts.
	Notifiers []alerts.Notifier
	Clock     poller.Clock
}

// Service runs the poll and alert controllers against one chat session.
type Service struct {
	config    *Config
	logger    logger.Logger
	messenger Session
	registry  *registry.Registry
	poller    *poller.Poller
	alerts    *alerts.Controller
	natsConn  *nats.Conn

	closeOnce sync.Once
}

// NewService connects the production collaborators: the Discord bot, the
// scanner client and, when configured, the NATS event sink.
func NewService(ctx context.Context, cfg *Config, log logger.Logger) (*Service, error) {
	bot, err := discord.New(cfg.Discord, log)
	if err != nil {
		return nil, err
	}

	deps := Dependencies{
		Messenger: bot,
		Fetcher:   inventory.NewClient(cfg.Scanner, log),
	}

	var nc *nats.Conn

	if cfg.NATS.Enabled() {
		publisher, conn, err := natsutil.ConnectWithEventPublisher(ctx, cfg.NATS, log)
		if err != nil {
			return nil, fmt.Errorf("failed to set up NATS event publisher: %w", err)
		}

		nc = conn
		deps.Notifiers = append(deps.Notifiers, publisher)
	}

	svc, err := New(cfg, deps, log)
	if err != nil {
		if nc != nil {
			nc.Close()
		}

		return nil, err
	}

	svc.natsConn = nc

	return svc, nil
}

// New builds a Service from already constructed collaborators. cfg must be validated.
func New(cfg *Config, deps Dependencies, log logger.Logger) (*Service, error) {
	if deps.Messenger == nil {
		return nil, errNoMessenger
	}

	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	var now func() time.Time
	if deps.Clock != nil {
		now = deps.Clock.Now
	}

	reg := registry.New(cfg.Thresholds(), now)

	reconciler := summary.NewReconciler(reg, deps.Messenger, deps.Messenger, summary.NewStateStore(), log, summary.Options{
		RequestTimeout: cfg.RequestTimeout.Std(),
		ClearOnStartup: cfg.ClearMessagesOnStartup,
		Location:       cfg.Location(),
	})

	p, err := poller.New(poller.Config{
		UpdateInterval: cfg.UpdateInterval.Std(),
		RequestTimeout: cfg.RequestTimeout.Std(),
		IgnoredDevices: cfg.IgnoredDevices,
		Audiences:      cfg.Audiences,
	}, poller.Dependencies{
		Fetcher:    deps.Fetcher,
		Registry:   reg,
		Reconciler: reconciler,
		Clock:      deps.Clock,
	}, log)
	if err != nil {
		return nil, err
	}

	notifiers := alerts.MultiNotifier{alerts.LogNotifier{Logger: log}}

	if len(cfg.UserAlerts) > 0 {
		notifiers = append(notifiers, alerts.NewDirectMessageNotifier(
			deps.Messenger, cfg.UserAlerts, log,
			alerts.WithLocation(cfg.Location()),
			alerts.WithRequestTimeout(cfg.RequestTimeout.Std()),
		))
	}

	notifiers = append(notifiers, deps.Notifiers...)

	return &Service{
		config:    cfg,
		logger:    log,
		messenger: deps.Messenger,
		registry:  reg,
		poller:    p,
		alerts:    alerts.NewController(reg, notifiers, cfg.AlertInterval.Std(), deps.Clock, log),
	}, nil
}

// Registry exposes the device registry.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Start opens the chat session and runs both controllers until ctx ends or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	if err := s.messenger.Open(); err != nil {
		return err
	}

	s.logger.Info().
		Str("service", s.config.ServiceName).
		Str("version", version.GetFullVersion()).
		Str("scanner", s.config.Scanner.Type).
		Int("audiences", len(s.config.Audiences)).
		Msg("Monitor started")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.poller.Start(gctx) })
	g.Go(func() error { return s.alerts.Start(gctx) })

	return g.Wait()
}

// Stop halts both controllers and releases the connections.
func (s *Service) Stop(ctx context.Context) error {
	var errs []error

	if err := s.poller.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := s.alerts.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	s.closeOnce.Do(func() {
		if err := s.messenger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close chat session: %w", err))
		}

		if s.natsConn != nil {
			if err := s.natsConn.Drain(); err != nil {
				errs = append(errs, fmt.Errorf("failed to drain NATS connection: %w", err))
			}
		}
	})

	return errors.Join(errs...)
}
