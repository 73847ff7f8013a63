// Password reset notifiers.
//
// Environment:
//   - RESET_NOTIFIER_URL: HTTP relay (mail gateway, chat webhook) that receives
//     reset messages as JSON. When empty, LogNotifier is used instead.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sportevents/backend/internal/model"
	tmpl "github.com/sportevents/backend/internal/template"
	"go.uber.org/zap"
)

// LogNotifier writes reset messages to the log. The reset link is included
// only when revealLink is set, which main does outside production.
type LogNotifier struct {
	logger     *zap.Logger
	revealLink bool
}

func NewLogNotifier(logger *zap.Logger, revealLink bool) *LogNotifier {
	return &LogNotifier{logger: logger, revealLink: revealLink}
}

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, msg model.ResetMessage) error {
	fields := []zap.Field{
		zap.String("to", msg.To),
		zap.Time("expires_at", msg.ExpiresAt),
	}
	if n.revealLink {
		fields = append(fields, zap.String("reset_url", msg.URL))
	}
	n.logger.Info("password reset requested", fields...)
	return nil
}

// HTTPNotifier POSTs reset messages to a relay endpoint.
type HTTPNotifier struct {
	url        string
	body       string
	httpClient *http.Client
}

// ResetPayload is the JSON document sent to the relay.
type ResetPayload struct {
	To        string    `json:"to"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func NewHTTPNotifier(url string) *HTTPNotifier {
	return &HTTPNotifier{
		url:  url,
		body: tmpl.DefaultResetBody,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *HTTPNotifier) NotifyPasswordReset(ctx context.Context, msg model.ResetMessage) error {
	data := tmpl.ResetDataFromMessage(msg)
	payload, err := json.Marshal(ResetPayload{
		To:        msg.To,
		Name:      msg.Name,
		Subject:   tmpl.ResetSubject,
		Text:      tmpl.RenderBody(n.body, &data),
		URL:       msg.URL,
		ExpiresAt: msg.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reset message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send reset message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("reset notifier returned status %d", resp.StatusCode)
	}
	return nil
}
