package slackclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// ErrAuth marks credential failures (invalid or revoked token, bot not in
// channel). Fatal for the channel being fetched, non-fatal for the run.
var ErrAuth = errors.New("slack auth error")

// ErrRateLimited marks rate-limit responses that survived bounded retries.
var ErrRateLimited = errors.New("slack rate limited")

// Message is one message fetched from a channel's history
type Message struct {
	TS        string // Slack message timestamp, unique per channel
	UserID    string
	Text      string
	Timestamp time.Time
	FromBot   bool
}

// ChannelInfo describes a channel visible to the bot
type ChannelInfo struct {
	ID        string
	Name      string
	IsPrivate bool
}

// Client wraps the Slack Web API for history ingestion
type Client struct {
	api        *slack.Client
	maxRetries int
	pageLimit  int
}

// NewClient creates a Slack client for the given bot token
func NewClient(token string) *Client {
	return &Client{
		api:        slack.New(token),
		maxRetries: 3,
		pageLimit:  200,
	}
}

// ListChannels returns all non-archived channels the bot can see
func (c *Client) ListChannels(ctx context.Context) ([]ChannelInfo, error) {
	var channels []ChannelInfo
	cursor := ""

	for {
		page, next, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Types:           []string{"public_channel", "private_channel"},
			ExcludeArchived: true,
			Limit:           c.pageLimit,
			Cursor:          cursor,
		})
		if err != nil {
			return nil, classify(err)
		}

		for _, ch := range page {
			channels = append(channels, ChannelInfo{
				ID:        ch.ID,
				Name:      ch.Name,
				IsPrivate: ch.IsPrivate,
			})
		}

		if next == "" {
			break
		}
		cursor = next
	}

	return channels, nil
}

// FetchHistory returns messages in [oldest, latest], oldest first, following
// cursor pagination up to limit messages. Rate limits are retried with the
// server-suggested delay, bounded by maxRetries.
func (c *Client) FetchHistory(ctx context.Context, channelID string, oldest, latest time.Time, limit int) ([]Message, error) {
	var messages []Message
	cursor := ""

	for len(messages) < limit {
		params := &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Oldest:    formatTS(oldest),
			Latest:    formatTS(latest),
			Limit:     minInt(c.pageLimit, limit-len(messages)),
			Cursor:    cursor,
		}

		resp, err := c.historyWithRetry(ctx, params)
		if err != nil {
			return nil, err
		}

		for _, m := range resp.Messages {
			messages = append(messages, Message{
				TS:        m.Timestamp,
				UserID:    m.User,
				Text:      m.Text,
				Timestamp: parseTS(m.Timestamp),
				FromBot:   m.BotID != "" || m.SubType == "bot_message",
			})
		}

		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		cursor = resp.ResponseMetaData.NextCursor
	}

	// conversations.history returns newest first
	reverse(messages)
	return messages, nil
}

func (c *Client) historyWithRetry(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.api.GetConversationHistoryContext(ctx, params)
		if err == nil {
			return resp, nil
		}
		lastErr = classify(err)

		if errors.Is(lastErr, ErrAuth) {
			return nil, lastErr
		}

		var rateErr *slack.RateLimitedError
		delay := time.Duration(attempt+1) * time.Second
		if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
			delay = rateErr.RetryAfter
		}

		if attempt < c.maxRetries {
			log.Printf("[Slack] history fetch for %s failed (attempt %d/%d): %v, retrying in %s",
				params.ChannelID, attempt+1, c.maxRetries, err, delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

// classify maps Slack API errors onto the ingestion error taxonomy
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	msg := strings.ToLower(err.Error())
	authIndicators := []string{
		"invalid_auth",
		"token_revoked",
		"token_expired",
		"account_inactive",
		"not_authed",
		"missing_scope",
		"not_in_channel",
		"channel_not_found",
	}
	for _, indicator := range authIndicators {
		if strings.Contains(msg, indicator) {
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
	}

	return err
}

func formatTS(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}

func parseTS(ts string) time.Time {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

func reverse(messages []Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
