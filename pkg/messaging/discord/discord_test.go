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

package discord

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/messaging"
)

var errNetwork = errors.New("connection reset")

type fakeSession struct {
	opened      bool
	status      string
	sent        []*discordgo.MessageSend
	edits       []*discordgo.MessageEdit
	deleted     []string
	bulkDeleted [][]string
	dms         map[string]string
	history     []*discordgo.Message
	sendErr     error
	editErr     error
	userChanErr error
	nextID      int
}

func (f *fakeSession) Open() error  { f.opened = true; return nil }
func (f *fakeSession) Close() error { f.opened = false; return nil }

func (f *fakeSession) UpdateGameStatus(_ int, name string) error {
	f.status = name
	return nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}

	f.sent = append(f.sent, data)
	f.nextID++

	return &discordgo.Message{ID: "m" + strconv.Itoa(f.nextID), ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}

	f.edits = append(f.edits, m)

	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) ChannelMessages(string, int, string, string, string, ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return f.history, nil
}

func (f *fakeSession) ChannelMessagesBulkDelete(_ string, messages []string, _ ...discordgo.RequestOption) error {
	f.bulkDeleted = append(f.bulkDeleted, messages)
	return nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.userChanErr != nil {
		return nil, f.userChanErr
	}

	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.dms == nil {
		f.dms = make(map[string]string)
	}

	f.dms[channelID] = content

	return &discordgo.Message{ChannelID: channelID}, nil
}

func restError(status, code int) *discordgo.RESTError {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "error"},
	}
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(Config{}, logger.NewTestLogger())
	require.ErrorIs(t, err, errTokenRequired)
}

func TestClient_OpenSetsStatus(t *testing.T) {
	s := &fakeSession{}
	c := newClient(s, "Watching devices", logger.NewTestLogger())

	require.NoError(t, c.Open())
	assert.True(t, s.opened)
	assert.Equal(t, "Watching devices", s.status)

	require.NoError(t, c.Close())
	assert.False(t, s.opened)
}

func TestClient_CreateNotification(t *testing.T) {
	s := &fakeSession{}
	c := newClient(s, "", logger.NewTestLogger())

	h, err := c.CreateNotification(context.Background(), "chan-1", messaging.Content{
		Embed: &messaging.Embed{Title: "Working Devices: 2", Description: "a, b", Color: 0x008000, ThumbnailURL: "http://x/ok.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, messaging.Handle{ChannelID: "chan-1", MessageID: "m1"}, h)

	require.Len(t, s.sent, 1)
	require.Len(t, s.sent[0].Embeds, 1)
	assert.Equal(t, "Working Devices: 2", s.sent[0].Embeds[0].Title)
	assert.Equal(t, "http://x/ok.png", s.sent[0].Embeds[0].Thumbnail.URL)
}

func TestClient_EditNotificationNotFound(t *testing.T) {
	s := &fakeSession{editErr: restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage)}
	c := newClient(s, "", logger.NewTestLogger())

	handle := messaging.Handle{ChannelID: "chan-1", MessageID: "m9"}

	got, err := c.EditNotification(context.Background(), handle, messaging.Content{Text: "hi"})
	require.ErrorIs(t, err, messaging.ErrMessageNotFound)
	assert.Equal(t, handle, got)
}

func TestClient_EditNotification(t *testing.T) {
	s := &fakeSession{}
	c := newClient(s, "", logger.NewTestLogger())

	handle := messaging.Handle{ChannelID: "chan-1", MessageID: "m9"}

	got, err := c.EditNotification(context.Background(), handle, messaging.Content{Text: "Last updated at: **now**"})
	require.NoError(t, err)
	assert.Equal(t, handle, got)
	require.Len(t, s.edits, 1)
	require.NotNil(t, s.edits[0].Content)
	assert.Equal(t, "Last updated at: **now**", *s.edits[0].Content)
}

func TestClient_SendDirectMessage(t *testing.T) {
	s := &fakeSession{}
	c := newClient(s, "", logger.NewTestLogger())

	require.NoError(t, c.SendDirectMessage(context.Background(), "u1", "Device: x is offline!"))
	assert.Equal(t, "Device: x is offline!", s.dms["dm-u1"])

	s.userChanErr = restError(http.StatusForbidden, discordgo.ErrCodeCannotSendMessagesToThisUser)

	err := c.SendDirectMessage(context.Background(), "u2", "hello")
	require.ErrorIs(t, err, messaging.ErrDeliveryFailed)
}

func TestClient_ListRecentMessagesSkipsOld(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &fakeSession{history: []*discordgo.Message{
		{ID: "new", ChannelID: "c", Timestamp: now.Add(-time.Hour)},
		{ID: "old", ChannelID: "c", Timestamp: now.Add(-15 * 24 * time.Hour)},
	}}
	c := newClient(s, "", logger.NewTestLogger())
	c.now = func() time.Time { return now }

	msgs, err := c.ListRecentMessages(context.Background(), "c")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "new", msgs[0].ID)
}

func TestClient_BulkDelete(t *testing.T) {
	s := &fakeSession{}
	c := newClient(s, "", logger.NewTestLogger())

	require.NoError(t, c.BulkDelete(context.Background(), "c", nil))
	require.NoError(t, c.BulkDelete(context.Background(), "c", []string{"one"}))
	require.NoError(t, c.BulkDelete(context.Background(), "c", []string{"a", "b"}))

	assert.Equal(t, []string{"one"}, s.deleted)
	assert.Equal(t, [][]string{{"a", "b"}}, s.bulkDeleted)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown message", restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage), messaging.ErrMessageNotFound},
		{"unknown channel", restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel), messaging.ErrDestinationUnavailable},
		{"missing access", restError(http.StatusForbidden, discordgo.ErrCodeMissingAccess), messaging.ErrDestinationUnavailable},
		{"plain 404", restError(http.StatusNotFound, 0), messaging.ErrDestinationUnavailable},
		{"server error", restError(http.StatusBadGateway, 0), nil},
		{"network", errNetwork, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			require.Error(t, got)

			if tt.want != nil {
				require.ErrorIs(t, got, tt.want)
				return
			}

			assert.NotErrorIs(t, got, messaging.ErrMessageNotFound)
			assert.NotErrorIs(t, got, messaging.ErrDestinationUnavailable)
		})
	}
}
