package action

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type webhookImpl struct {
	url        string
	httpClient *http.Client
}

type WebhookConfig struct {
	URL     string
	Timeout time.Duration

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

type webhookPayload struct {
	Label    string  `json:"label"`
	Distance float64 `json:"distance"`
}

// NewWebhook posts every action as JSON to a fixed URL.
func NewWebhook(cfg *WebhookConfig) (Dispatcher, error) {
	if cfg == nil {
		return nil, errors.New("missing parameter: cfg")
	}

	if cfg.URL == "" {
		return nil, errors.New("missing parameter: cfg.URL")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &webhookImpl{
		url:        cfg.URL,
		httpClient: httpClient,
	}, nil
}

func (client *webhookImpl) Dispatch(ctx context.Context, action Action) error {
	body, err := json.Marshal(webhookPayload{Label: action.Label, Distance: action.Distance})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("action: post %s: %w", client.url, err)
	}

	defer resp.Body.Close()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("action: post %s: unexpected status %s", client.url, resp.Status)
	}

	return nil
}
