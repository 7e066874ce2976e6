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

//go:generate mockgen -destination=mock_messaging.go -package=messaging github.com/carverauto/fleetradar/pkg/messaging NotificationPoster,DirectMessenger,ChannelCleaner

// Package messaging defines the chat-platform capabilities the monitor needs.
package messaging

import (
	"context"
	"time"
)

// TimestampLayout is the human-readable time format used in posted text.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Handle identifies a posted notification so it can be edited in place.
type Handle struct {
	ChannelID string
	MessageID string
}

// IsZero reports whether the handle points at nothing.
func (h Handle) IsZero() bool {
	return h.MessageID == ""
}

// Embed is a titled, colored card.
type Embed struct {
	Title        string
	Description  string
	Color        int
	ThumbnailURL string
}

// Content is the body of a notification: plain text, an embed, or both.
type Content struct {
	Text  string
	Embed *Embed
}

// Message is a previously posted message in a channel.
type Message struct {
	ID        string
	ChannelID string
	Timestamp time.Time
}

// NotificationPoster creates, edits and deletes channel notifications.
type NotificationPoster interface {
	CreateNotification(ctx context.Context, channelID string, content Content) (Handle, error)
	EditNotification(ctx context.Context, handle Handle, content Content) (Handle, error)
	DeleteNotification(ctx context.Context, handle Handle) error
}

// DirectMessenger sends a private text message to one user.
type DirectMessenger interface {
	SendDirectMessage(ctx context.Context, userID, text string) error
}

// ChannelCleaner removes old messages from a channel.
type ChannelCleaner interface {
	ListRecentMessages(ctx context.Context, channelID string) ([]Message, error)
	BulkDelete(ctx context.Context, channelID string, messageIDs []string) error
}

// Messenger is a chat platform able to do everything the monitor needs.
type Messenger interface {
	NotificationPoster
	DirectMessenger
	ChannelCleaner
}
