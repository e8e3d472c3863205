package rest

import (
	"context"
	"net/http"
)

// Gateway is the websocket connection endpoint disclosure.
type Gateway struct {
	URL string `json:"url"`
}

// BotGateway additionally carries the recommended shard count and session
// start limits for the authenticated bot.
type BotGateway struct {
	URL               string            `json:"url"`
	Shards            int               `json:"shards"`
	SessionStartLimit SessionStartLimit `json:"session_start_limit"`
}

// SessionStartLimit reports how many gateway sessions the bot may still open.
type SessionStartLimit struct {
	Total          int `json:"total"`
	Remaining      int `json:"remaining"`
	ResetAfter     int `json:"reset_after"`
	MaxConcurrency int `json:"max_concurrency"`
}

// User is the subset of the user resource the library exposes.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Message is the subset of the message resource the library exposes.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
	Author    User   `json:"author"`
}

// CreateMessageParams is the request body for CreateMessage.
type CreateMessageParams struct {
	Content string `json:"content"`
}

// GetGateway returns the gateway URL. The endpoint is unauthenticated and
// effectively unlimited, which makes it a cheap connectivity probe.
func (c *Client) GetGateway(ctx context.Context) (*Gateway, error) {
	var gw Gateway
	route := NewRoute(http.MethodGet, "/gateway", "")
	if err := c.Do(ctx, route, nil, &gw); err != nil {
		return nil, err
	}
	return &gw, nil
}

// GetBotGateway returns the gateway URL plus session start limits for the
// authenticated bot.
func (c *Client) GetBotGateway(ctx context.Context) (*BotGateway, error) {
	var gw BotGateway
	route := NewRoute(http.MethodGet, "/gateway/bot", "")
	if err := c.Do(ctx, route, nil, &gw); err != nil {
		return nil, err
	}
	return &gw, nil
}

// GetCurrentUser returns the bot's own user resource.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var u User
	route := NewRoute(http.MethodGet, "/users/@me", "")
	if err := c.Do(ctx, route, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateMessage posts a message to a channel. The channel id is the route's
// major parameter: messages to different channels are limited independently.
func (c *Client) CreateMessage(ctx context.Context, channelID, content string) (*Message, error) {
	var m Message
	route := NewRoute(http.MethodPost, "/channels/%s/messages", channelID, channelID)
	params := CreateMessageParams{Content: content}
	if err := c.Do(ctx, route, params, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMessage fetches a single message. The message id is a minor parameter:
// it fills the path but does not split the bucket.
func (c *Client) GetMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	var m Message
	route := NewRoute(http.MethodGet, "/channels/%s/messages/%s", channelID, channelID, messageID)
	if err := c.Do(ctx, route, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
