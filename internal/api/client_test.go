package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	c := NewClient()
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("expected base URL %s, got %s", DefaultBaseURL, c.BaseURL())
	}
	if c.httpClient == nil {
		t.Fatal("expected HTTP client to be initialized")
	}

	c = NewClient(WithBaseURL("http://api.example.com/"), WithTimeout(3*time.Second))
	if c.BaseURL() != "http://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
	}
	if c.httpClient.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", c.httpClient.Timeout)
	}
	if got := c.LoginURL(); got != "http://api.example.com/auth/login" {
		t.Errorf("LoginURL() = %q", got)
	}
}

func TestProfileSendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathProfile {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"teamId": 42,
			"teamName": "Null Pointers",
			"members": [{"name": "Ada"}, {"email": "bob@example.com"}, {}],
			"problemStatement": "Smart campus",
			"payment": {"status": "paid"},
			"venue": {"building": "B2", "roomNumber": 104, "floor": "1"},
			"evaluation": {"eval1": true},
			"teamState": "eval_pending",
			"qrCode": {"image": "data:image/png;base64,AAAA"}
		}`))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	p, err := c.Profile(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TeamID != "42" {
		t.Errorf("TeamID = %q, want 42", p.TeamID)
	}
	if p.Venue.RoomNumber != "104" {
		t.Errorf("RoomNumber = %q, want 104", p.Venue.RoomNumber)
	}
	if !p.Evaluation.Eval1 || p.Evaluation.Final {
		t.Errorf("unexpected evaluation flags: %+v", p.Evaluation)
	}
	names := []string{p.Members[0].DisplayName(), p.Members[1].DisplayName(), p.Members[2].DisplayName()}
	want := []string{"Ada", "bob@example.com", "—"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("member %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestNoTokenSkipsNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	_, err := c.Agenda(context.Background(), "")
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if called {
		t.Error("expected no request without a token")
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		msg    string
	}{
		{"unauthorized", 401, `{"detail":"Token expired"}`, ErrUnauthorized, "Token expired"},
		{"forbidden", 403, ``, ErrUnauthorized, ""},
		{"not found", 404, `{"error":"no team"}`, ErrNotFound, "no team"},
		{"server error", 502, `<html>bad gateway</html>`, ErrServerUnavailable, ""},
		{"gateway timeout", 504, `plain text`, ErrTimeout, "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(WithBaseURL(server.URL))
			_, err := c.SubmissionStatus(context.Background(), "tok")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if got := ServerMessage(err); got != tt.msg {
				t.Errorf("ServerMessage() = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestDecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"live_evaluation": [`))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	if _, err := c.Agenda(context.Background(), "tok"); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestServerUnavailable(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:1"))
	_, err := c.Chat(context.Background(), "tok")
	if !IsServerUnavailable(err) {
		t.Fatalf("expected server unavailable, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(WithBaseURL(server.URL))
	done := make(chan error, 1)
	go func() {
		_, err := c.Profile(ctx, "tok")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("request was not aborted")
	}
}

func TestChatRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"messages":[
				{"id":1,"message":"hi","sender_role":"team","created_at":"t1"},
				{"id":2,"message":"hello","senderRole":"admin","created_at":"t2"}
			]}`))
		case http.MethodPost:
			var req struct {
				Message string `json:"message"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
			}
			_, _ = w.Write([]byte(`{"message":{"id":3,"message":"` + req.Message + `","sender_role":"team"}}`))
		}
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	msgs, err := c.Chat(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(msgs) != 2 || msgs[1].SenderRole != "admin" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	echo, err := c.SendChat(context.Background(), "tok", "ping")
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if echo.ID != "3" || echo.Message != "ping" {
		t.Errorf("unexpected echo: %+v", echo)
	}
}

func TestMarkReady(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Idempotency-Key")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	if err := c.MarkReady(context.Background(), "tok", "7", "42:7"); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}
	if gotPath != "/api/team/evaluations/7/ready" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "42:7" {
		t.Errorf("idempotency key = %q", gotKey)
	}

	if err := c.MarkReady(context.Background(), "tok", "", ""); err == nil {
		t.Error("expected error for missing evaluation id")
	}
}

func TestSubmitBody(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathSubmission {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewClient(WithBaseURL(server.URL))
	err := c.Submit(context.Background(), "tok", SubmitRequest{
		Title:               "Drone Post",
		GithubRepo:          "https://github.com/x/y",
		TeamID:              "42",
		SubmissionTimestamp: Timestamp(at),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if body["team_id"] != "42" || body["submission_timestamp"] != "2026-03-01T10:00:00Z" {
		t.Errorf("unexpected body: %v", body)
	}
	if _, ok := body["live_demo"]; !ok {
		t.Error("expected live_demo key to be present")
	}
}

func TestSubmissionStatusDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"submitted","submission":{"title":"T","github_repo":"https://g"},"submitted_at":"2026-03-01T10:00:00Z"}`))
	}))
	defer server.Close()

	s, err := NewClient(WithBaseURL(server.URL)).SubmissionStatus(context.Background(), "tok")
	if err != nil {
		t.Fatalf("SubmissionStatus: %v", err)
	}
	if s.Status != SubmissionSubmitted || s.Submission == nil || s.Submission.Title != "T" {
		t.Errorf("unexpected status: %+v", s)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := NewAPIError("agenda", 500, ErrServerUnavailable)
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("expected status in message, got %q", err.Error())
	}
	err = NewAPIError("agenda", 0, ErrTimeout)
	if !IsTimeout(err) {
		t.Error("expected IsTimeout")
	}
	if ServerMessage(errors.New("plain")) != "" {
		t.Error("expected empty server message for non-API error")
	}
}
