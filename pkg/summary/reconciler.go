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

package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/messaging"
	"github.com/carverauto/fleetradar/pkg/registry"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxClearIterations    = 50
)

var (
	errNoSummaryChannel = errors.New("audience has no summary channel")
	errClearIncomplete  = errors.New("channel still has messages after clear limit")
)

// PartitionSource lists an audience's relevant devices grouped by state.
type PartitionSource interface {
	ListRelevant(audience *registry.Audience) registry.Partition
}

// Options tune a Reconciler.
type Options struct {
	// MaxDescriptionLength caps rendered device lists. Zero means the Discord limit.
	MaxDescriptionLength int
	// RequestTimeout bounds every individual chat call.
	RequestTimeout time.Duration
	// ClearOnStartup deletes recent channel messages once per audience before
	// the first summary is posted.
	ClearOnStartup bool
	// Location renders the freshness timestamp. Nil means local time.
	Location *time.Location
}

// Reconciler keeps each audience's summary channel showing exactly one live
// notification per category, editing in place when it can.
type Reconciler struct {
	source  PartitionSource
	poster  messaging.NotificationPoster
	cleaner messaging.ChannelCleaner
	store   *StateStore
	logger  logger.Logger
	opts    Options
	now     func() time.Time
}

// NewReconciler builds a reconciler. cleaner may be nil when ClearOnStartup is off.
func NewReconciler(
	source PartitionSource,
	poster messaging.NotificationPoster,
	cleaner messaging.ChannelCleaner,
	store *StateStore,
	log logger.Logger,
	opts Options,
) *Reconciler {
	if opts.MaxDescriptionLength <= 0 {
		opts.MaxDescriptionLength = DefaultMaxDescriptionLength
	}

	if opts.MaxDescriptionLength < MinDescriptionLength {
		opts.MaxDescriptionLength = MinDescriptionLength
	}

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	if store == nil {
		store = NewStateStore()
	}

	return &Reconciler{
		source:  source,
		poster:  poster,
		cleaner: cleaner,
		store:   store,
		logger:  log,
		opts:    opts,
		now:     time.Now,
	}
}

// Store exposes the notification state, mainly for inspection.
func (r *Reconciler) Store() *StateStore {
	return r.store
}

// Reconcile pushes the current partition of the audience to its summary
// channel. Failures are logged per category and returned joined; they never
// stop the remaining categories from being reconciled.
func (r *Reconciler) Reconcile(ctx context.Context, audience *registry.Audience) error {
	if audience.SummaryChannelID == "" {
		r.logger.Warn().Str("audience_id", audience.ID).Msg("Skipping audience without summary channel")

		return fmt.Errorf("%w: %s", errNoSummaryChannel, audience.ID)
	}

	unlock := r.store.Lock(audience.ID)
	defer unlock()

	if r.opts.ClearOnStartup && r.cleaner != nil && !r.store.cleared(audience.ID) {
		if err := r.clearChannel(ctx, audience.SummaryChannelID); err != nil {
			r.logger.Warn().Err(err).
				Str("audience_id", audience.ID).
				Str("channel_id", audience.SummaryChannelID).
				Msg("Failed to clear summary channel")
		}

		// One attempt per audience: retrying later would delete our own summaries.
		r.store.markCleared(audience.ID)
	}

	partition := r.source.ListRelevant(audience)

	var errs []error

	for _, category := range summaryCategories {
		content := RenderCategory(category, partition.Get(category.State()), r.opts.MaxDescriptionLength)
		if err := r.upsert(ctx, audience, category, content); err != nil {
			errs = append(errs, err)
		}
	}

	freshness := r.now()
	if r.opts.Location != nil {
		freshness = freshness.In(r.opts.Location)
	}

	if err := r.upsert(ctx, audience, CategoryFreshness, RenderFreshness(freshness)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (r *Reconciler) upsert(
	ctx context.Context, audience *registry.Audience, category Category, content messaging.Content,
) error {
	callCtx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
	defer cancel()

	handle, tracked := r.store.Get(audience.ID, category)
	if !tracked {
		created, err := r.poster.CreateNotification(callCtx, audience.SummaryChannelID, content)
		if err != nil {
			recordOperation(ctx, category, operationCreate, outcomeFailure)
			r.logger.Warn().Err(err).
				Str("audience_id", audience.ID).
				Str("category", category.String()).
				Msg("Failed to create summary notification")

			return fmt.Errorf("create %s notification: %w", category, err)
		}

		recordOperation(ctx, category, operationCreate, outcomeSuccess)
		r.store.Set(audience.ID, category, created)

		return nil
	}

	edited, err := r.poster.EditNotification(callCtx, handle, content)

	switch {
	case err == nil:
		recordOperation(ctx, category, operationEdit, outcomeSuccess)

		if !edited.IsZero() {
			r.store.Set(audience.ID, category, edited)
		}

		return nil
	case errors.Is(err, messaging.ErrMessageNotFound):
		// Recreated on the next cycle, never in this one.
		recordOperation(ctx, category, operationEdit, outcomeNotFound)
		r.store.Clear(audience.ID, category)
		r.logger.Info().
			Str("audience_id", audience.ID).
			Str("category", category.String()).
			Str("message_id", handle.MessageID).
			Msg("Tracked summary notification is gone, will recreate")

		return nil
	default:
		recordOperation(ctx, category, operationEdit, outcomeFailure)
		r.logger.Warn().Err(err).
			Str("audience_id", audience.ID).
			Str("category", category.String()).
			Msg("Failed to edit summary notification")

		return fmt.Errorf("edit %s notification: %w", category, err)
	}
}

func (r *Reconciler) clearChannel(ctx context.Context, channelID string) error {
	for range maxClearIterations {
		callCtx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
		messages, err := r.cleaner.ListRecentMessages(callCtx, channelID)
		cancel()

		if err != nil {
			recordOperation(ctx, CategoryFreshness, operationClear, outcomeFailure)
			return fmt.Errorf("list messages: %w", err)
		}

		if len(messages) == 0 {
			recordOperation(ctx, CategoryFreshness, operationClear, outcomeSuccess)
			return nil
		}

		if err := r.deleteMessages(ctx, channelID, messages); err != nil {
			recordOperation(ctx, CategoryFreshness, operationClear, outcomeFailure)
			return err
		}
	}

	return errClearIncomplete
}

func (r *Reconciler) deleteMessages(ctx context.Context, channelID string, messages []messaging.Message) error {
	callCtx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
	defer cancel()

	if len(messages) == 1 {
		err := r.poster.DeleteNotification(callCtx, messaging.Handle{ChannelID: channelID, MessageID: messages[0].ID})
		if err != nil && !errors.Is(err, messaging.ErrMessageNotFound) {
			return fmt.Errorf("delete message: %w", err)
		}

		return nil
	}

	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}

	if err := r.cleaner.BulkDelete(callCtx, channelID, ids); err != nil {
		return fmt.Errorf("bulk delete: %w", err)
	}

	return nil
}
