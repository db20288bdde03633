package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamlabs/reimbursement-service/internal"
)

// Config points the client at the external email API. An empty URL
// disables dispatch entirely.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client posts rendered emails to the configured endpoint. Send never
// returns an error: failures are logged for diagnostics and dropped, so
// callers cannot be failed by the notification channel.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		url:        config.URL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Enabled reports whether an outbound endpoint is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Send issues a single outbound request carrying the email. Unconfigured
// endpoint is a silent no-op; any failure is swallowed after logging.
func (c *Client) Send(ctx context.Context, recipient, subject, body string) {
	if !c.Enabled() {
		c.logger.Debug("email not sent: no mailer endpoint configured",
			"recipient", recipient,
			"subject", subject)
		return
	}

	payload := map[string]interface{}{
		"recipient": recipient,
		"subject":   subject,
		"message":   body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to marshal email payload", "error", err, "recipient", recipient)
		return
	}

	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		c.logger.Error("failed to create email request", "error", err, "recipient", recipient)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("email dispatch failed",
			"error", err,
			"recipient", recipient,
			"subject", subject,
			"url", c.url)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("email API returned non-2xx status",
			"status_code", resp.StatusCode,
			"recipient", recipient,
			"subject", subject)
		return
	}

	c.logger.Info("email dispatched",
		"recipient", recipient,
		"subject", subject)
}

// String describes the client without leaking endpoint credentials.
func (c *Client) String() string {
	if !c.Enabled() {
		return "mailer(disabled)"
	}
	return fmt.Sprintf("mailer(%s)", c.url)
}
