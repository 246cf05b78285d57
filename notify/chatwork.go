// Package notify delivers rank-1 change alerts to ChatWork rooms.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"rankwatch/models"
)

const (
	// MaxMessageListings caps the listings rendered into one message.
	MaxMessageListings = 20

	separator = "━━━━━━━━━━━━━━━━━\n"
)

// ChatWork posts messages through the ChatWork v2 REST API. A room id is a
// target's ChannelID.
type ChatWork struct {
	token   string
	baseURL string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// NewChatWork creates a notifier. The limiter keeps under ChatWork's
// 300 requests per 5 minutes.
func NewChatWork(token, baseURL string, client *http.Client, timeout time.Duration) *ChatWork {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &ChatWork{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Notify formats and sends listings for target. Failures are logged and
// reported as false; nothing blocks longer than the configured timeout.
func (c *ChatWork) Notify(ctx context.Context, target models.WatchTarget, listings []models.Listing) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.send(ctx, target.ChannelID, FormatMessage(target, listings)); err != nil {
		log.Error().Err(err).Str("target", target.Key()).Str("room", target.ChannelID).Msg("ChatWork notification failed")
		return false
	}

	log.Info().Str("target", target.Key()).Str("room", target.ChannelID).Msg("ChatWork notification sent")
	return true
}

func (c *ChatWork) send(ctx context.Context, roomID, message string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rooms/%s/messages", c.baseURL, url.PathEscape(roomID))
	form := url.Values{"body": {message}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-ChatWorkToken", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chatwork status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// FormatMessage renders the [info] block ChatWork displays as a framed card.
func FormatMessage(target models.WatchTarget, listings []models.Listing) string {
	var b strings.Builder
	b.WriteString("[info]")
	b.WriteString(separator)
	fmt.Fprintf(&b, "📍 %s + %s\n", target.DisplayName, target.Category)
	b.WriteString(separator)
	fmt.Fprintf(&b, "🔗 %s\n", target.URL)
	b.WriteString(separator)
	b.WriteString("\n")

	shown := listings
	if len(shown) > MaxMessageListings {
		shown = shown[:MaxMessageListings]
	}
	for _, l := range shown {
		fmt.Fprintf(&b, "■%s・%s円\n\n", l.Name, l.Price)
	}
	if extra := len(listings) - MaxMessageListings; extra > 0 {
		fmt.Fprintf(&b, "...他%d件\n", extra)
	}

	b.WriteString("ーーーーーーーーーーー[/info]")
	return b.String()
}
