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

// Package discord implements the messaging capabilities on top of a Discord bot session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/messaging"
)

const (
	// Discord refuses to bulk delete messages older than two weeks.
	bulkDeleteWindow = 14 * 24 * time.Hour
	messagePageSize  = 100
)

var errTokenRequired = errors.New("discord bot token is required")

// Config configures the bot session.
type Config struct {
	Token  string `json:"token"`
	Status string `json:"status,omitempty"`
}

// session is the subset of *discordgo.Session used by Client.
type session interface {
	Open() error
	Close() error
	UpdateGameStatus(idle int, name string) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Client adapts a Discord session to the messaging interfaces.
type Client struct {
	session session
	status  string
	logger  logger.Logger
	now     func() time.Time
}

var (
	_ messaging.NotificationPoster = (*Client)(nil)
	_ messaging.DirectMessenger    = (*Client)(nil)
	_ messaging.ChannelCleaner     = (*Client)(nil)
	_ messaging.Messenger          = (*Client)(nil)
)

// New creates a Client for the bot token. The gateway is not opened until Open.
func New(cfg Config, log logger.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errTokenRequired
	}

	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	return newClient(s, cfg.Status, log), nil
}

func newClient(s session, status string, log logger.Logger) *Client {
	return &Client{
		session: s,
		status:  status,
		logger:  log,
		now:     time.Now,
	}
}

// Open connects to the gateway and sets the configured activity status.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	if c.status != "" {
		if err := c.session.UpdateGameStatus(0, c.status); err != nil {
			c.logger.Warn().Err(err).Str("status", c.status).Msg("Failed to set bot status")
		}
	}

	c.logger.Info().Msg("Discord session opened")

	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) CreateNotification(ctx context.Context, channelID string, content messaging.Content) (messaging.Handle, error) {
	send := &discordgo.MessageSend{Content: content.Text}
	if embed := toEmbed(content.Embed); embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{embed}
	}

	msg, err := c.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return messaging.Handle{}, mapError(err, "create notification in "+channelID)
	}

	return messaging.Handle{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func (c *Client) EditNotification(ctx context.Context, handle messaging.Handle, content messaging.Content) (messaging.Handle, error) {
	edit := discordgo.NewMessageEdit(handle.ChannelID, handle.MessageID).SetContent(content.Text)
	if embed := toEmbed(content.Embed); embed != nil {
		edit = edit.SetEmbed(embed)
	}

	msg, err := c.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	if err != nil {
		return handle, mapError(err, "edit notification "+handle.MessageID)
	}

	return messaging.Handle{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func (c *Client) DeleteNotification(ctx context.Context, handle messaging.Handle) error {
	if err := c.session.ChannelMessageDelete(handle.ChannelID, handle.MessageID, discordgo.WithContext(ctx)); err != nil {
		return mapError(err, "delete notification "+handle.MessageID)
	}

	return nil
}

// SendDirectMessage opens (or reuses) the DM channel with the user and posts text to it.
func (c *Client) SendDirectMessage(ctx context.Context, userID, text string) error {
	ch, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: open dm channel for user %s: %w", messaging.ErrDeliveryFailed, userID, err)
	}

	if _, err := c.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: send dm to user %s: %w", messaging.ErrDeliveryFailed, userID, err)
	}

	return nil
}

// ListRecentMessages returns the latest messages in the channel that are
// still young enough to be bulk deleted.
func (c *Client) ListRecentMessages(ctx context.Context, channelID string) ([]messaging.Message, error) {
	msgs, err := c.session.ChannelMessages(channelID, messagePageSize, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, "list messages in "+channelID)
	}

	cutoff := c.now().Add(-bulkDeleteWindow)
	out := make([]messaging.Message, 0, len(msgs))

	for _, m := range msgs {
		if m.Timestamp.Before(cutoff) {
			continue
		}

		out = append(out, messaging.Message{ID: m.ID, ChannelID: m.ChannelID, Timestamp: m.Timestamp})
	}

	return out, nil
}

// BulkDelete removes up to 100 messages. A single message goes through the
// plain delete endpoint because bulk delete requires at least two.
func (c *Client) BulkDelete(ctx context.Context, channelID string, messageIDs []string) error {
	var err error

	switch len(messageIDs) {
	case 0:
		return nil
	case 1:
		err = c.session.ChannelMessageDelete(channelID, messageIDs[0], discordgo.WithContext(ctx))
	default:
		err = c.session.ChannelMessagesBulkDelete(channelID, messageIDs, discordgo.WithContext(ctx))
	}

	if err != nil {
		return mapError(err, "bulk delete in "+channelID)
	}

	return nil
}

func toEmbed(e *messaging.Embed) *discordgo.MessageEmbed {
	if e == nil {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}

	if e.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
	}

	return embed
}

// mapError translates Discord REST failures into messaging sentinel errors.
func mapError(err error, op string) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMessage:
			return fmt.Errorf("%w: %s: %w", messaging.ErrMessageNotFound, op, err)
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
			return fmt.Errorf("%w: %s: %w", messaging.ErrDestinationUnavailable, op, err)
		}
	}

	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound, http.StatusForbidden:
			return fmt.Errorf("%w: %s: %w", messaging.ErrDestinationUnavailable, op, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
