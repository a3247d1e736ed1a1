package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// retryableCodes are the platform error classes worth another attempt.
// Anything else (channel_not_found, invalid_auth, ...) fails immediately.
var retryableCodes = map[string]bool{
	"rate_limited":        true,
	"ratelimited":         true,
	"service_unavailable": true,
	"internal_error":      true,
	"timeout":             true,
	"request_timeout":     true,
}

// APIError is a chat platform call failure
type APIError struct {
	// Code is the platform error string, e.g. "channel_not_found"
	Code string
	// StatusCode is the HTTP status, when the failure was at that layer
	StatusCode int
	// Retryable marks transient failure classes
	Retryable bool
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return "slack api error: " + e.Code
	}
	return fmt.Sprintf("slack api error: http status %d", e.StatusCode)
}

// apiResponse is the envelope every platform endpoint returns
type apiResponse struct {
	OK        bool   `json:"ok"`
	ErrorCode string `json:"error"`
}

func (r *apiResponse) ok() bool          { return r.OK }
func (r *apiResponse) errorCode() string { return r.ErrorCode }

type responder interface {
	ok() bool
	errorCode() string
}

// Client talks to the chat platform's Web API. Each logical call makes one
// HTTP request per attempt, with a bounded per-attempt timeout and a
// constant-interval retry policy for transient failures.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	retryDelay    time.Duration
	retryAttempts int
	log           *zap.Logger

	// now is injectable for search-window tests
	now func() time.Time
}

// NewClient creates a Client. retryAttempts is the total attempt budget
// (3 means two retries).
func NewClient(baseURL string, requestTimeout, retryDelay time.Duration, retryAttempts int, log *zap.Logger) *Client {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    &http.Client{Timeout: requestTimeout},
		retryDelay:    retryDelay,
		retryAttempts: retryAttempts,
		log:           log,
		now:           time.Now,
	}
}

// call performs one API call with the retry policy applied. GET requests
// carry params in the query string, POST requests carry body as JSON.
func (c *Client) call(ctx context.Context, method, path, token string, params url.Values, body any, out responder) error {
	op := func() error {
		err := c.doOnce(ctx, method, path, token, params, body, out)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable {
			return backoff.Permanent(err)
		}

		c.log.Debug("retryable slack call failure", zap.String("path", path), zap.Error(err))
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.retryAttempts-1))
	return backoff.Retry(op, backoff.WithContext(policy, ctx))
}

func (c *Client) doOnce(ctx context.Context, method, path, token string, params url.Values, body any, out responder) error {
	endpoint := c.baseURL + "/" + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("encode %s request: %w", path, err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// transport failures, timeouts included, are worth a retry
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &APIError{StatusCode: resp.StatusCode, Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Retryable: false}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	if !out.ok() {
		code := out.errorCode()
		return &APIError{Code: code, Retryable: retryableCodes[code]}
	}

	return nil
}

// Message is a chat message as returned by the thread endpoints
type Message struct {
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
	Text     string `json:"text"`
	User     string `json:"user,omitempty"`
}

// PostedMessage identifies a message created by PostMessage or PostReply
type PostedMessage struct {
	TS      string
	Channel string
}

type postMessageRequest struct {
	Channel     string `json:"channel"`
	Text        string `json:"text"`
	ThreadTS    string `json:"thread_ts,omitempty"`
	UnfurlLinks bool   `json:"unfurl_links"`
}

type postMessageResponse struct {
	apiResponse
	TS      string `json:"ts"`
	Channel string `json:"channel"`
}

// PostMessage posts a new root message to a channel
func (c *Client) PostMessage(ctx context.Context, token, channel, text string) (*PostedMessage, error) {
	var resp postMessageResponse
	err := c.call(ctx, http.MethodPost, "chat.postMessage", token, nil,
		postMessageRequest{Channel: channel, Text: text}, &resp)
	if err != nil {
		return nil, err
	}
	return &PostedMessage{TS: resp.TS, Channel: resp.Channel}, nil
}

// PostReply posts a threaded reply under an existing root message
func (c *Client) PostReply(ctx context.Context, token, channel, threadTS, text string) (*PostedMessage, error) {
	var resp postMessageResponse
	err := c.call(ctx, http.MethodPost, "chat.postMessage", token, nil,
		postMessageRequest{Channel: channel, Text: text, ThreadTS: threadTS}, &resp)
	if err != nil {
		return nil, err
	}
	return &PostedMessage{TS: resp.TS, Channel: resp.Channel}, nil
}

type updateMessageRequest struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	Text    string `json:"text"`
}

type updateMessageResponse struct {
	apiResponse
	TS      string `json:"ts"`
	Channel string `json:"channel"`
}

// UpdateMessage rewrites the text of an existing message
func (c *Client) UpdateMessage(ctx context.Context, token, channelID, ts, text string) error {
	var resp updateMessageResponse
	return c.call(ctx, http.MethodPost, "chat.update", token, nil,
		updateMessageRequest{Channel: channelID, TS: ts, Text: text}, &resp)
}

type repliesResponse struct {
	apiResponse
	Messages []Message `json:"messages"`
}

// ThreadReplies fetches the full thread under a root message. The root
// message itself is the first element.
func (c *Client) ThreadReplies(ctx context.Context, token, channelID, ts string) ([]Message, error) {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("ts", ts)

	var resp repliesResponse
	if err := c.call(ctx, http.MethodGet, "conversations.replies", token, params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
