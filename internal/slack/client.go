// Package slack provides a minimal client for the Slack Web API. Responses are kept as
// raw JSON so callers can pass them through without losing fields.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Web API root.
const DefaultBaseURL = "https://slack.com/api"

// Client is a minimal HTTP client for the Slack Web API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New returns a new client. If httpClient is nil, a default with 30s timeout is used.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, HTTP: httpClient}
}

// Response is a decoded Web API reply. Values are left undecoded.
type Response map[string]json.RawMessage

// Field returns the raw value of key, or JSON null when it is absent.
func (r Response) Field(key string) json.RawMessage {
	if v, ok := r[key]; ok {
		return v
	}
	return json.RawMessage("null")
}

// Decode unmarshals the value at key into v.
func (r Response) Decode(key string, v any) error {
	raw, ok := r[key]
	if !ok {
		return fmt.Errorf("response has no %q field", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// APIError is an "ok": false reply.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string { return e.Code }

// IsAPIError reports whether err carries the given Slack error code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// call posts form-encoded params to method and decodes the reply.
func (c *Client) call(ctx context.Context, method string, params url.Values) (Response, error) {
	if c.Token == "" {
		return nil, errors.New("slack token missing")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &APIError{Method: method, Code: "ratelimited"}
		}
		return nil, fmt.Errorf("%s: slack api status %d", method, resp.StatusCode)
	}
	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	var ok bool
	if err := json.Unmarshal(body.Field("ok"), &ok); err != nil || !ok {
		code := "unknown_error"
		var s string
		if json.Unmarshal(body.Field("error"), &s) == nil && s != "" {
			code = s
		}
		return nil, &APIError{Method: method, Code: code}
	}
	return body, nil
}

// encodeJSON marshals v for a form field that takes JSON.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, fmt.Sprintf("%d", v))
	}
}
