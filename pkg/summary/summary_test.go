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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/messaging"
	"github.com/carverauto/fleetradar/pkg/registry"
)

func TestRenderDeviceList(t *testing.T) {
	tests := []struct {
		name    string
		devices []string
		maxLen  int
		want    string
	}{
		{name: "empty", devices: nil, maxLen: 2000, want: "None"},
		{name: "single", devices: []string{"dev-1"}, maxLen: 2000, want: "dev-1"},
		{name: "joined", devices: []string{"a", "b", "c"}, maxLen: 2000, want: "a, b, c"},
		{name: "fits exactly", devices: []string{"aaaaaaaa", "bbbbbbbb"}, maxLen: 18, want: "aaaaaaaa, bbbbbbbb"},
		{name: "fits with slack under marker", devices: []string{"aaaaaaaa", "bbbbbbbb"}, maxLen: 20, want: "aaaaaaaa, bbbbbbbb"},
		{
			name:    "truncated",
			devices: []string{"aaaa", "bbbb", "cccc", "dddd", "eeee"},
			maxLen:  24,
			want:    "aaaa, bbbb, and more...",
		},
		{name: "first too long", devices: []string{strings.Repeat("x", 30)}, maxLen: 20, want: "and more..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderDeviceList(tt.devices, tt.maxLen))
		})
	}
}

func TestRenderDeviceListNeverExceedsLimit(t *testing.T) {
	devices := make([]string, 0, 500)
	for i := range 500 {
		devices = append(devices, fmt.Sprintf("device-%04d", i))
	}

	for _, maxLen := range []int{11, 50, 100, 2000} {
		out := RenderDeviceList(devices, maxLen)
		assert.LessOrEqual(t, len(out), maxLen)
		assert.True(t, strings.HasSuffix(out, "and more..."))
	}
}

func TestRenderDeviceListKeepsLastDeviceNearLimit(t *testing.T) {
	devices := make([]string, 0, 154)
	for i := range 153 {
		devices = append(devices, fmt.Sprintf("device-%04d", i))
	}

	devices = append(devices, "dev-99999")
	joined := strings.Join(devices, ", ")
	require.Len(t, joined, 1998)

	out := RenderDeviceList(devices, DefaultMaxDescriptionLength)
	assert.Equal(t, joined, out)
	assert.False(t, strings.HasSuffix(out, "and more..."))
}

func TestNewReconcilerClampsDescriptionLength(t *testing.T) {
	r := NewReconciler(staticSource{}, nil, nil, nil, logger.NewTestLogger(), Options{MaxDescriptionLength: 3})
	assert.Equal(t, MinDescriptionLength, r.opts.MaxDescriptionLength)

	out := RenderDeviceList([]string{"device-1", "device-2"}, r.opts.MaxDescriptionLength)
	assert.LessOrEqual(t, len(out), r.opts.MaxDescriptionLength)
	assert.Equal(t, "and more...", out)
}

func TestRenderCategory(t *testing.T) {
	content := RenderCategory(CategoryOffline, []string{"a", "b"}, DefaultMaxDescriptionLength)
	require.NotNil(t, content.Embed)
	assert.Equal(t, "Offline Devices: 2", content.Embed.Title)
	assert.Equal(t, "a, b", content.Embed.Description)
	assert.Equal(t, 0xFF0000, content.Embed.Color)
	assert.Contains(t, content.Embed.ThumbnailURL, "offline.png")

	empty := RenderCategory(CategoryOnline, nil, DefaultMaxDescriptionLength)
	assert.Equal(t, "Working Devices: 0", empty.Embed.Title)
	assert.Equal(t, "None", empty.Embed.Description)
}

func TestRenderFreshness(t *testing.T) {
	at := time.Date(2025, 3, 4, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "Last updated at: **3/4/2025, 3:04:05 PM**", RenderFreshness(at).Text)
}

type staticSource struct {
	partition registry.Partition
}

func (s staticSource) ListRelevant(*registry.Audience) registry.Partition {
	return s.partition
}

func newTestReconciler(t *testing.T, poster messaging.NotificationPoster, cleaner messaging.ChannelCleaner, opts Options) *Reconciler {
	t.Helper()

	src := staticSource{partition: registry.Partition{
		Online:  []string{"a"},
		Warning: []string{"b"},
		Offline: []string{"c"},
	}}

	r := NewReconciler(src, poster, cleaner, NewStateStore(), logger.NewTestLogger(), opts)
	r.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	return r
}

func testAudience() *registry.Audience {
	return &registry.Audience{ID: "guild-1", SummaryChannelID: "chan-1"}
}

func TestReconcileCreatesThenEdits(t *testing.T) {
	ctrl := gomock.NewController(t)
	poster := messaging.NewMockNotificationPoster(ctrl)
	r := newTestReconciler(t, poster, nil, Options{})
	audience := testAudience()

	var n int

	poster.EXPECT().CreateNotification(gomock.Any(), "chan-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, channelID string, _ messaging.Content) (messaging.Handle, error) {
			n++
			return messaging.Handle{ChannelID: channelID, MessageID: fmt.Sprintf("m%d", n)}, nil
		}).Times(4)

	require.NoError(t, r.Reconcile(context.Background(), audience))
	assert.Equal(t, 4, r.Store().Tracked(audience.ID))

	poster.EXPECT().EditNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h messaging.Handle, _ messaging.Content) (messaging.Handle, error) {
			return h, nil
		}).Times(4)

	require.NoError(t, r.Reconcile(context.Background(), audience))
	assert.Equal(t, 4, r.Store().Tracked(audience.ID))

	h, ok := r.Store().Get(audience.ID, CategoryFreshness)
	require.True(t, ok)
	assert.Equal(t, "m4", h.MessageID)
}

func TestReconcileFreshnessIsLast(t *testing.T) {
	ctrl := gomock.NewController(t)
	poster := messaging.NewMockNotificationPoster(ctrl)
	r := newTestReconciler(t, poster, nil, Options{})

	var titles []string

	poster.EXPECT().CreateNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, channelID string, c messaging.Content) (messaging.Handle, error) {
			if c.Embed != nil {
				titles = append(titles, c.Embed.Title)
			} else {
				titles = append(titles, c.Text)
			}

			return messaging.Handle{ChannelID: channelID, MessageID: c.Text + fmt.Sprint(len(titles))}, nil
		}).Times(4)

	require.NoError(t, r.Reconcile(context.Background(), testAudience()))
	require.Len(t, titles, 4)
	assert.Equal(t, "Working Devices: 1", titles[0])
	assert.Equal(t, "Warned Devices: 1", titles[1])
	assert.Equal(t, "Offline Devices: 1", titles[2])
	assert.True(t, strings.HasPrefix(titles[3], "Last updated at: **"))
}

func TestReconcileMissingMessageIsRecreatedNextCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	poster := messaging.NewMockNotificationPoster(ctrl)
	r := newTestReconciler(t, poster, nil, Options{})
	audience := testAudience()

	for _, c := range []Category{CategoryOnline, CategoryWarning, CategoryOffline, CategoryFreshness} {
		r.Store().Set(audience.ID, c, messaging.Handle{ChannelID: "chan-1", MessageID: "old-" + c.String()})
	}

	poster.EXPECT().EditNotification(gomock.Any(), messaging.Handle{ChannelID: "chan-1", MessageID: "old-warning"}, gomock.Any()).
		Return(messaging.Handle{}, fmt.Errorf("%w: gone", messaging.ErrMessageNotFound))
	poster.EXPECT().EditNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h messaging.Handle, _ messaging.Content) (messaging.Handle, error) {
			return h, nil
		}).Times(3)

	require.NoError(t, r.Reconcile(context.Background(), audience))
	assert.Equal(t, 3, r.Store().Tracked(audience.ID))

	_, ok := r.Store().Get(audience.ID, CategoryWarning)
	assert.False(t, ok)

	poster.EXPECT().CreateNotification(gomock.Any(), "chan-1", gomock.Any()).
		Return(messaging.Handle{ChannelID: "chan-1", MessageID: "new-warning"}, nil)
	poster.EXPECT().EditNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h messaging.Handle, _ messaging.Content) (messaging.Handle, error) {
			return h, nil
		}).Times(3)

	require.NoError(t, r.Reconcile(context.Background(), audience))

	h, ok := r.Store().Get(audience.ID, CategoryWarning)
	require.True(t, ok)
	assert.Equal(t, "new-warning", h.MessageID)
}

func TestReconcileTransientEditErrorKeepsHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	poster := messaging.NewMockNotificationPoster(ctrl)
	r := newTestReconciler(t, poster, nil, Options{})
	audience := testAudience()

	for _, c := range []Category{CategoryOnline, CategoryWarning, CategoryOffline, CategoryFreshness} {
		r.Store().Set(audience.ID, c, messaging.Handle{ChannelID: "chan-1", MessageID: "m-" + c.String()})
	}

	poster.EXPECT().EditNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(messaging.Handle{}, errors.New("503 service unavailable")).Times(4)

	err := r.Reconcile(context.Background(), audience)
	require.Error(t, err)
	assert.Equal(t, 4, r.Store().Tracked(audience.ID))
}

func TestReconcileCreateFailureRetriesNextCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	poster := messaging.NewMockNotificationPoster(ctrl)
	r := newTestReconciler(t, poster, nil, Options{})
	audience := testAudience()

	poster.EXPECT().CreateNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(messaging.Handle{}, messaging.ErrDestinationUnavailable).Times(4)

	require.ErrorIs(t, r.Reconcile(context.Background(), audience), messaging.ErrDestinationUnavailable)
	assert.Equal(t, 0, r.Store().Tracked(audience.ID))

	poster.EXPECT().CreateNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(messaging.Handle{ChannelID: "chan-1", MessageID: "m"}, nil).Times(4)

	require.NoError(t, r.Reconcile(context.Background(), audience))
	assert.Equal(t, 4, r.Store().Tracked(audience.ID))
}

func TestReconcileSkipsAudienceWithoutChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	poster := messaging.NewMockNotificationPoster(ctrl)
	r := newTestReconciler(t, poster, nil, Options{})

	err := r.Reconcile(context.Background(), &registry.Audience{ID: "no-channel"})
	require.ErrorIs(t, err, errNoSummaryChannel)
}

func TestReconcileClearsChannelOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	poster := messaging.NewMockNotificationPoster(ctrl)
	cleaner := messaging.NewMockChannelCleaner(ctrl)
	r := newTestReconciler(t, poster, cleaner, Options{ClearOnStartup: true})
	audience := testAudience()

	gomock.InOrder(
		cleaner.EXPECT().ListRecentMessages(gomock.Any(), "chan-1").
			Return([]messaging.Message{{ID: "1"}, {ID: "2"}}, nil),
		cleaner.EXPECT().BulkDelete(gomock.Any(), "chan-1", []string{"1", "2"}).Return(nil),
		cleaner.EXPECT().ListRecentMessages(gomock.Any(), "chan-1").
			Return([]messaging.Message{{ID: "3"}}, nil),
		poster.EXPECT().DeleteNotification(gomock.Any(), messaging.Handle{ChannelID: "chan-1", MessageID: "3"}).Return(nil),
		cleaner.EXPECT().ListRecentMessages(gomock.Any(), "chan-1").Return(nil, nil),
	)

	poster.EXPECT().CreateNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(messaging.Handle{ChannelID: "chan-1", MessageID: "m"}, nil).Times(4)
	poster.EXPECT().EditNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(messaging.Handle{ChannelID: "chan-1", MessageID: "m"}, nil).Times(4)

	require.NoError(t, r.Reconcile(context.Background(), audience))
	require.NoError(t, r.Reconcile(context.Background(), audience))
}

func TestReconcileClearFailureIsAttemptedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	poster := messaging.NewMockNotificationPoster(ctrl)
	cleaner := messaging.NewMockChannelCleaner(ctrl)
	r := newTestReconciler(t, poster, cleaner, Options{ClearOnStartup: true})

	cleaner.EXPECT().ListRecentMessages(gomock.Any(), "chan-1").
		Return(nil, messaging.ErrDestinationUnavailable).Times(1)
	poster.EXPECT().CreateNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(messaging.Handle{ChannelID: "chan-1", MessageID: "m"}, nil).Times(4)
	poster.EXPECT().EditNotification(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(messaging.Handle{ChannelID: "chan-1", MessageID: "m"}, nil).Times(4)

	require.NoError(t, r.Reconcile(context.Background(), testAudience()))
	require.NoError(t, r.Reconcile(context.Background(), testAudience()))
}

func TestStateStoreLockSerializesAudience(t *testing.T) {
	s := NewStateStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock := s.Lock("guild")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestStateStoreIsolatesAudiences(t *testing.T) {
	s := NewStateStore()
	s.Set("a", CategoryOnline, messaging.Handle{ChannelID: "c", MessageID: "1"})

	assert.Equal(t, 1, s.Tracked("a"))
	assert.Equal(t, 0, s.Tracked("b"))

	s.Clear("a", CategoryOnline)
	_, ok := s.Get("a", CategoryOnline)
	assert.False(t, ok)
}
