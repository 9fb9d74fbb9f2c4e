package api

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

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the default hackathon API server URL.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of a failed response is kept for messages.
	maxErrorBody = 4 << 10
)

// Endpoint paths.
const (
	PathProfile          = "/api/team/me"
	PathAgenda           = "/api/agenda"
	PathAnnouncements    = "/api/announcements"
	PathChat             = "/api/team/chat"
	PathSubmissionStatus = "/api/submissions/status"
	PathSubmission       = "/api/team/submission"
	PathLogin            = "/auth/login"
)

// Client provides methods to interact with the hackathon REST API.
// Every authenticated call takes the session token explicitly so callers
// always use the token that is current at call time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets the API server base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the default timeout for HTTP requests.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new API client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: "hackdash",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginURL returns the URL that starts the OAuth hand-off in a browser.
func (c *Client) LoginURL() string {
	return c.baseURL + PathLogin
}

// Profile fetches the authenticated team's profile.
func (c *Client) Profile(ctx context.Context, token string) (*TeamProfile, error) {
	var p TeamProfile
	if err := c.do(ctx, "team_profile", http.MethodGet, PathProfile, token, nil, &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}

// Agenda fetches the live evaluation and the evaluation timeline.
func (c *Client) Agenda(ctx context.Context, token string) (*Agenda, error) {
	var a Agenda
	if err := c.do(ctx, "agenda", http.MethodGet, PathAgenda, token, nil, &a, nil); err != nil {
		return nil, err
	}
	return &a, nil
}

// Announcements fetches the complete current announcement list.
func (c *Client) Announcements(ctx context.Context, token string) ([]Announcement, error) {
	var resp announcementsResponse
	if err := c.do(ctx, "announcements", http.MethodGet, PathAnnouncements, token, nil, &resp, nil); err != nil {
		return nil, err
	}
	if resp.Announcements == nil {
		resp.Announcements = []Announcement{}
	}
	return resp.Announcements, nil
}

// Chat fetches the team's full chat history.
func (c *Client) Chat(ctx context.Context, token string) ([]ChatMessage, error) {
	var resp chatResponse
	if err := c.do(ctx, "chat_history", http.MethodGet, PathChat, token, nil, &resp, nil); err != nil {
		return nil, err
	}
	if resp.Messages == nil {
		resp.Messages = []ChatMessage{}
	}
	return resp.Messages, nil
}

// SendChat posts a chat message and returns the server echo.
func (c *Client) SendChat(ctx context.Context, token, message string) (*ChatMessage, error) {
	var resp chatSendResponse
	if err := c.do(ctx, "send_chat", http.MethodPost, PathChat, token, chatSendRequest{Message: message}, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

// MarkReady signals that the team is ready for the given evaluation.
// idempotencyKey lets the server collapse repeated signals for the same
// team and evaluation.
func (c *Client) MarkReady(ctx context.Context, token, evaluationID, idempotencyKey string) error {
	if evaluationID == "" {
		return NewAPIError("mark_ready", 0, errors.New("missing evaluation id"))
	}
	path := "/api/team/evaluations/" + url.PathEscape(evaluationID) + "/ready"
	hdr := http.Header{}
	if idempotencyKey != "" {
		hdr.Set("X-Idempotency-Key", idempotencyKey)
	}
	return c.do(ctx, "mark_ready", http.MethodPost, path, token, nil, nil, hdr)
}

// SubmissionStatus fetches the project submission state.
func (c *Client) SubmissionStatus(ctx context.Context, token string) (*SubmissionStatus, error) {
	var s SubmissionStatus
	if err := c.do(ctx, "submission_status", http.MethodGet, PathSubmissionStatus, token, nil, &s, nil); err != nil {
		return nil, err
	}
	return &s, nil
}

// Submit posts the project submission.
func (c *Client) Submit(ctx context.Context, token string, req SubmitRequest) error {
	return c.do(ctx, "submit_project", http.MethodPost, PathSubmission, token, req, nil, nil)
}

// do performs one authenticated JSON request. out may be nil when the
// response body is not needed.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any, hdr http.Header) error {
	if token == "" {
		return NewAPIError(op, 0, ErrNoToken)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return NewAPIError(op, 0, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return NewAPIError(op, 0, err)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return NewAPIError(op, 0, ctx.Err())
			}
			return NewAPIError(op, 0, ErrTimeout)
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return NewAPIError(op, 0, ErrTimeout)
		}
		return NewAPIError(op, 0, fmt.Errorf("%w: %v", ErrServerUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := NewAPIError(op, resp.StatusCode, statusError(resp.StatusCode))
		apiErr.Message = errorText(raw)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewAPIError(op, resp.StatusCode, fmt.Errorf("%w: %v", ErrDecode, err))
	}
	return nil
}

// errorText extracts a human-readable message from an error body.
// FastAPI uses "detail"; other handlers use "error" or "message".
func errorText(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		if raw[0] == '<' {
			return ""
		}
		return string(raw)
	}
	for _, key := range []string{"detail", "error", "message"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
