package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiwars-hackathon/hackdash/internal/storage"
)

type recordingNav struct {
	reasons []string
}

func (n *recordingNav) ToLogin(reason string) { n.reasons = append(n.reasons, reason) }

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestResolveFromURL(t *testing.T) {
	kv := storage.NewMemory()
	nav := &recordingNav{}
	s := NewTokenStore(kv, WithNavigator(nav))

	res, err := s.Resolve(context.Background(), mustURL(t, "http://localhost:3000/dashboard?token=abc123"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Token != "abc123" || res.Source != SourceURL {
		t.Errorf("unexpected resolution: %+v", res)
	}
	if got := res.Location.RequestURI(); got != "/dashboard" {
		t.Errorf("location = %q, want /dashboard", got)
	}
	if v, ok, _ := kv.Get(context.Background(), storage.KeyAuthToken); !ok || v != "abc123" {
		t.Errorf("token not persisted: %q %v", v, ok)
	}
	if s.Token() != "abc123" {
		t.Errorf("Token() = %q", s.Token())
	}
	if len(nav.reasons) != 0 {
		t.Errorf("unexpected navigation: %v", nav.reasons)
	}
}

func TestResolveKeepsOtherParams(t *testing.T) {
	s := NewTokenStore(storage.NewMemory())
	res, err := s.Resolve(context.Background(), mustURL(t, "/oauth-success?name=Ada&token=t1&tab=chat"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := res.Location.RequestURI(); got != "/dashboard?name=Ada&tab=chat" {
		t.Errorf("location = %q", got)
	}
}

func TestResolveFromStorage(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Set(context.Background(), storage.KeyAuthToken, "stored")
	s := NewTokenStore(kv)

	res, err := s.Resolve(context.Background(), mustURL(t, "/dashboard"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Token != "stored" || res.Source != SourceStorage || res.Location != nil {
		t.Errorf("unexpected resolution: %+v", res)
	}
}

func TestResolveUnauthenticated(t *testing.T) {
	nav := &recordingNav{}
	s := NewTokenStore(storage.NewMemory(), WithNavigator(nav))

	res, err := s.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Authenticated() || res.Source != SourceNone {
		t.Errorf("expected unauthenticated, got %+v", res)
	}
	if len(nav.reasons) != 1 {
		t.Errorf("expected one navigation to login, got %v", nav.reasons)
	}
}

func TestInvalidate(t *testing.T) {
	kv := storage.NewMemory()
	nav := &recordingNav{}
	s := NewTokenStore(kv, WithNavigator(nav), WithLogger(zerolog.Nop()))
	_ = s.Set(context.Background(), "abc")

	s.Invalidate(context.Background(), "profile fetch failed")

	if s.Token() != "" {
		t.Error("expected token cleared from memory")
	}
	if _, ok, _ := kv.Get(context.Background(), storage.KeyAuthToken); ok {
		t.Error("expected token cleared from storage")
	}
	if len(nav.reasons) != 1 || nav.reasons[0] != "profile fetch failed" {
		t.Errorf("unexpected navigation: %v", nav.reasons)
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"?token=abc", "/dashboard?token=abc"},
		{"abc123", "/dashboard?token=abc123"},
		{"http://localhost/dashboard?token=x", "/dashboard?token=x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := ParseLocation(tt.in)
			if err != nil {
				t.Fatalf("ParseLocation: %v", err)
			}
			if tt.want == "" {
				if u != nil {
					t.Errorf("expected nil, got %v", u)
				}
				return
			}
			if got := u.RequestURI(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		Timeout:       5 * time.Second,
	}
}

func TestReceiverCapturesToken(t *testing.T) {
	kv := storage.NewMemory()
	store := NewTokenStore(kv)
	r := NewReceiver(store, "http://api.example.com/auth/login", "", zerolog.Nop())
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	client := noRedirectClient()
	resp, err := client.Get(srv.URL + "/oauth-success?token=tok1&name=Ada")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if strings.Contains(loc, "token") || !strings.HasPrefix(loc, "/dashboard") {
		t.Errorf("Location = %q, want token-free dashboard", loc)
	}
	if store.Token() != "tok1" {
		t.Errorf("Token() = %q", store.Token())
	}

	select {
	case tok := <-r.Tokens():
		if tok != "tok1" {
			t.Errorf("notified %q", tok)
		}
	default:
		t.Fatal("expected token notification")
	}

	// Same token again is persisted but not re-announced.
	resp, err = client.Get(srv.URL + "/dashboard?token=tok1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	select {
	case tok := <-r.Tokens():
		t.Errorf("unexpected duplicate notification %q", tok)
	default:
	}
}

func TestReceiverLoginRedirect(t *testing.T) {
	r := NewReceiver(NewTokenStore(storage.NewMemory()), "http://api.example.com/auth/login", "", zerolog.Nop())
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := noRedirectClient().Get(srv.URL + "/login")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "http://api.example.com/auth/login" {
		t.Errorf("Location = %q", got)
	}
}

func TestReceiverDashboardPage(t *testing.T) {
	r := NewReceiver(NewTokenStore(storage.NewMemory()), "http://x/auth/login", "", zerolog.Nop())
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := noRedirectClient().Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestReceiverStartStop(t *testing.T) {
	r := NewReceiver(NewTokenStore(storage.NewMemory()), "http://x/auth/login", "127.0.0.1:0", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(ctx); err == nil {
		t.Error("expected error on double start")
	}

	health := strings.TrimSuffix(r.URL(), "/login") + "/healthz"
	resp, err := noRedirectClient().Get(health)
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	if err := r.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
