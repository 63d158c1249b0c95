package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/rent-notifier/internal/metrics"
)

// DefaultLineEndpoint is the LINE Messaging API push endpoint.
const DefaultLineEndpoint = "https://api.line.me/v2/bot/message/push"

// LineNotifier implements Notifier via the LINE Messaging API push endpoint.
type LineNotifier struct {
	endpoint string
	token    string
	to       string
	client   *http.Client
}

// LineOption configures a LineNotifier.
type LineOption func(*LineNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) LineOption {
	return func(n *LineNotifier) {
		n.client = c
	}
}

// WithEndpoint overrides the push endpoint.
func WithEndpoint(url string) LineOption {
	return func(n *LineNotifier) {
		n.endpoint = url
	}
}

// NewLineNotifier creates a LineNotifier that pushes to the user or group
// id to, authenticated with the channel access token.
func NewLineNotifier(token, to string, opts ...LineOption) *LineNotifier {
	n := &LineNotifier{
		endpoint: DefaultLineEndpoint,
		token:    token,
		to:       to,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send pushes text as a single text message.
func (n *LineNotifier) Send(ctx context.Context, text string) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(linePushRequest{
		To:       n.to,
		Messages: []lineMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshaling line payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		n.endpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending line push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if readErr != nil {
			return fmt.Errorf("line returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("line returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
