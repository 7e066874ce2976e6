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

package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/fleetradar/pkg/alerts"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
	"github.com/carverauto/fleetradar/pkg/registry"
)

const (
	DefaultStream        = "events"
	DefaultSubjectPrefix = "events"

	eventSource     = "fleetradar/monitor"
	eventTypePrefix = "com.carverauto.fleetradar.device."
)

var errNoNATSURL = errors.New("nats url is required")

// Config describes the optional NATS event sink.
type Config struct {
	URL           string     `json:"url"`
	Stream        string     `json:"stream"`
	SubjectPrefix string     `json:"subject_prefix"`
	Domain        string     `json:"domain,omitempty"`
	TLS           *TLSConfig `json:"tls,omitempty"`
}

// Enabled reports whether a NATS URL was configured.
func (c *Config) Enabled() bool {
	return c != nil && c.URL != ""
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Stream == "" {
		out.Stream = DefaultStream
	}

	if out.SubjectPrefix == "" {
		out.SubjectPrefix = DefaultSubjectPrefix
	}

	return out
}

// publisher is the part of jetstream.JetStream used to emit events.
type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventPublisher publishes device presence CloudEvents to NATS JetStream.
type EventPublisher struct {
	js            publisher
	stream        string
	subjectPrefix string
	logger        logger.Logger
	now           func() time.Time
}

var _ alerts.Notifier = (*EventPublisher)(nil)

// NewEventPublisher creates a new EventPublisher for the specified stream.
func NewEventPublisher(js publisher, streamName, subjectPrefix string, log logger.Logger) *EventPublisher {
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}

	return &EventPublisher{
		js:            js,
		stream:        streamName,
		subjectPrefix: subjectPrefix,
		logger:        log,
		now:           time.Now,
	}
}

// Subject returns the subject events of the given kind are published on.
func (p *EventPublisher) Subject(kind alerts.Kind) string {
	return p.subjectPrefix + ".device." + string(kind)
}

// PublishDevicePresenceEvent publishes a device presence event to the events stream.
func (p *EventPublisher) PublishDevicePresenceEvent(ctx context.Context, kind alerts.Kind, data models.DevicePresenceEventData) error {
	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventTypePrefix + string(kind),
		DataContentType: "application/json",
		Subject:         p.Subject(kind),
		Time:            &data.Timestamp,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal device %s event: %w", kind, err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish device %s event: %w", kind, err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published device event")

	return nil
}

// Notify converts an alert into a presence event.
func (p *EventPublisher) Notify(ctx context.Context, alert alerts.Alert) error {
	data := models.DevicePresenceEventData{
		DeviceID:  alert.DeviceID,
		Timestamp: alert.Timestamp,
		AlertSent: alert.Kind == alerts.KindOffline,
	}

	if data.Timestamp.IsZero() {
		data.Timestamp = p.now()
	}

	if alert.LastSeen > 0 {
		data.LastSeen = time.Unix(alert.LastSeen, 0).UTC()
	}

	if alert.Kind == alerts.KindRecovered {
		data.PreviousState = registry.StateOffline.String()
		data.CurrentState = registry.StateOnline.String()
	} else {
		data.PreviousState = registry.StateOnline.String()
		data.CurrentState = registry.StateOffline.String()
	}

	return p.PublishDevicePresenceEvent(ctx, alert.Kind, data)
}

// ConnectWithEventPublisher creates a NATS connection with JetStream and returns an EventPublisher.
func ConnectWithEventPublisher(
	ctx context.Context, cfg *Config, log logger.Logger, extraOpts ...nats.Option,
) (*EventPublisher, *nats.Conn, error) {
	if !cfg.Enabled() {
		return nil, nil, errNoNATSURL
	}

	c := cfg.withDefaults()

	nc, err := ConnectWithSecurity(c.URL, c.TLS, log, extraOpts...)
	if err != nil {
		return nil, nil, err
	}

	pub, err := CreateEventPublisherWithDomain(ctx, nc, c.Domain, c.Stream, c.SubjectPrefix, log)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return pub, nc, nil
}

// ConnectWithSecurity creates a NATS connection, with mTLS when tlsCfg is set.
func ConnectWithSecurity(natsURL string, tlsCfg *TLSConfig, log logger.Logger, extraOpts ...nats.Option) (*nats.Conn, error) {
	var opts []nats.Option

	if tlsCfg != nil {
		tlsConf, err := tlsCfg.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	opts = append(opts,
		nats.Name("fleetradar"),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// CreateEventPublisherWithDomain creates an EventPublisher with optional NATS domain support,
// creating the stream or extending its subjects when needed.
func CreateEventPublisherWithDomain(
	ctx context.Context, nc *nats.Conn, domain, streamName, subjectPrefix string, log logger.Logger,
) (*EventPublisher, error) {
	var (
		js  jetstream.JetStream
		err error
	)

	if domain != "" {
		js, err = jetstream.NewWithDomain(nc, domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", domain, err)
		}
	} else {
		js, err = jetstream.New(nc)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
	}

	subject := subjectPrefix + ".device.*"

	stream, err := js.Stream(ctx, streamName)

	switch {
	case err == nil:
		info, infoErr := stream.Info(ctx)
		if infoErr != nil {
			return nil, fmt.Errorf("failed to read stream %s: %w", streamName, infoErr)
		}

		subjects := ensureSubjectList(info.Config.Subjects, subject)
		if len(subjects) != len(info.Config.Subjects) {
			cfg := info.Config
			cfg.Subjects = subjects

			if _, err = js.UpdateStream(ctx, cfg); err != nil {
				return nil, fmt.Errorf("failed to add subject %s to stream %s: %w", subject, streamName, err)
			}
		}
	case isStreamMissingErr(err):
		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}

		log.Info().Str("stream", streamName).Msg("Created NATS JetStream stream")
	default:
		return nil, fmt.Errorf("failed to get stream %s: %w", streamName, err)
	}

	return NewEventPublisher(js, streamName, subjectPrefix, log), nil
}

// ensureSubjectList appends subject unless an existing pattern already covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, s := range subjects {
		if matchesSubject(s, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject applies NATS wildcard rules: "*" matches one token, ">" the rest.
func matchesSubject(pattern, subject string) bool {
	pTokens := strings.Split(pattern, ".")
	sTokens := strings.Split(subject, ".")

	for i, p := range pTokens {
		if p == ">" {
			return len(sTokens) > i
		}

		if i >= len(sTokens) {
			return false
		}

		if p != "*" && p != sTokens[i] {
			return false
		}
	}

	return len(pTokens) == len(sTokens)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}
