package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/wahlandcase/attuned.deploynotify/internal/models"
)

const attachmentColor = "#22bb33"

// Payload is the single-shot webhook body
type Payload struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a colored block under the webhook message
type Attachment struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// BuildDeployPayload renders the webhook body for a deployment. A range
// with no new commits is announced as a rebuild rather than a release.
func BuildDeployPayload(repo, network, appVersion, releaseNotes string) Payload {
	var text string
	if releaseNotes == models.NoNewCommits || releaseNotes == "" {
		text = fmt.Sprintf("*%s* was rebuilt and redeployed to %s (still %s)", repo, network, appVersion)
	} else {
		text = fmt.Sprintf("*%s* %s was deployed to %s", repo, appVersion, network)
	}

	return Payload{
		Text:        text,
		Attachments: []Attachment{{Text: releaseNotes, Color: attachmentColor}},
	}
}

// WebhookNotifier posts one JSON payload to a pre-validated HTTPS endpoint
type WebhookNotifier struct {
	endpoint   *url.URL
	httpClient *http.Client
}

// NewWebhookNotifier validates the webhook URL up front: only https URLs on
// the allowed host are accepted, anything else is rejected before a single
// byte is sent.
func NewWebhookNotifier(rawURL, allowedHost string, timeout time.Duration) (*WebhookNotifier, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("webhook url must use https, got %q", u.Scheme)
	}
	if u.Host != allowedHost {
		return nil, fmt.Errorf("webhook host %q is not the allowed host %q", u.Host, allowedHost)
	}

	return &WebhookNotifier{
		endpoint:   u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Send posts the payload. One shot, no retry: the webhook variant is used
// by pipelines that treat notification as strictly fire-and-forget.
func (w *WebhookNotifier) Send(ctx context.Context, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint.String(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook post: http status %d", resp.StatusCode)
	}

	return nil
}
