package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wagatehq/wagate/internal/config"
)

// Client talks to the WhatsApp Cloud (Graph) API: media URL lookup and the
// outbound send-message proxy.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	version       string
	phoneNumberID string
	accessToken   string
	logger        *slog.Logger
}

func NewClient(log *slog.Logger, cfg config.GraphConfig) *Client {
	if log == nil {
		log = slog.Default()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		version:       cfg.Version,
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		logger:        log.With(slog.String("client", "graph")),
	}
}

// AuthHeader returns the bearer value downstream downloads must present.
func (c *Client) AuthHeader() string {
	return "Bearer " + c.accessToken
}

// ResolveMediaURL looks up the downloadable URL for a media id. A single
// attempt; a failed lookup aborts only the calling media task.
func (c *Client) ResolveMediaURL(ctx context.Context, mediaID string) (string, error) {
	c.logger.Info("fetching media url", slog.String("media_id", mediaID))

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build media lookup request: %w", err)
	}
	req.Header.Set("Authorization", c.AuthHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("media lookup: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", ErrMediaLookup, resp.StatusCode)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrMediaLookup, err)
	}
	if strings.TrimSpace(body.URL) == "" {
		return "", fmt.Errorf("%w: response has no url", ErrMediaLookup)
	}
	return body.URL, nil
}

// SendText proxies a text message to the provider send API.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	c.logger.Info("sending message", slog.String("recipient_number", to))

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.version, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", c.AuthHeader())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "send message", Code: resp.StatusCode}
	}
	return nil
}
