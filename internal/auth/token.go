// Package auth owns the session credential: resolving it from a location or
// local storage, persisting it, and ending the session.
package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aiwars-hackathon/hackdash/internal/storage"
)

// TokenParam is the query parameter that carries a one-time credential.
const TokenParam = "token"

// DashboardPath is where a resolved location is rewritten to.
const DashboardPath = "/dashboard"

// Source records where a token came from.
type Source string

const (
	SourceNone    Source = "none"
	SourceURL     Source = "url"
	SourceStorage Source = "storage"
)

// Navigator performs the "go to login" side effect when a session ends or
// never existed.
type Navigator interface {
	ToLogin(reason string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(reason string)

// ToLogin implements Navigator.
func (f NavigatorFunc) ToLogin(reason string) { f(reason) }

// Resolution is the outcome of Resolve.
type Resolution struct {
	Token  string
	Source Source
	// Location is the location to replace the current one with. It is nil
	// when no rewrite is needed.
	Location *url.URL
}

// Authenticated reports whether a token was found.
func (r Resolution) Authenticated() bool {
	return r.Token != ""
}

// TokenStore holds the active session token. Reads are safe from any
// goroutine; pollers call Token on every cycle.
type TokenStore struct {
	kv  storage.KV
	log zerolog.Logger
	nav Navigator

	mu    sync.RWMutex
	token string
}

// Option configures a TokenStore.
type Option func(*TokenStore)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *TokenStore) { s.log = l }
}

// WithNavigator sets the login navigator used by Invalidate and by Resolve
// when no session exists.
func WithNavigator(n Navigator) Option {
	return func(s *TokenStore) { s.nav = n }
}

// NewTokenStore creates a TokenStore persisting to kv.
func NewTokenStore(kv storage.KV, opts ...Option) *TokenStore {
	s := &TokenStore{kv: kv, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNavigator replaces the navigator.
func (s *TokenStore) SetNavigator(n Navigator) {
	s.mu.Lock()
	s.nav = n
	s.mu.Unlock()
}

// Resolve establishes the session. A token in loc wins: it is persisted and
// a token-free dashboard location is returned for replace-in-place. Without
// one the persisted token is used. With neither the navigator is sent to
// login and an unauthenticated resolution is returned.
func (s *TokenStore) Resolve(ctx context.Context, loc *url.URL) (Resolution, error) {
	if loc != nil {
		if tok := strings.TrimSpace(loc.Query().Get(TokenParam)); tok != "" {
			if err := s.Set(ctx, tok); err != nil {
				return Resolution{}, err
			}
			s.log.Info().Str("source", string(SourceURL)).Msg("session token captured")
			return Resolution{Token: tok, Source: SourceURL, Location: CleanLocation(loc)}, nil
		}
	}

	tok, ok, err := s.kv.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return Resolution{}, fmt.Errorf("read session token: %w", err)
	}
	if ok && tok != "" {
		s.setMemory(tok)
		return Resolution{Token: tok, Source: SourceStorage}, nil
	}

	s.setMemory("")
	s.toLogin("not signed in")
	return Resolution{Source: SourceNone}, nil
}

// Token returns the active token, or "" when there is no session.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set persists tok and makes it the active token.
func (s *TokenStore) Set(ctx context.Context, tok string) error {
	if err := s.kv.Set(ctx, storage.KeyAuthToken, tok); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	s.setMemory(tok)
	return nil
}

// Clear removes the token from memory and storage.
func (s *TokenStore) Clear(ctx context.Context) error {
	s.setMemory("")
	if err := s.kv.Delete(ctx, storage.KeyAuthToken); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

// Invalidate ends the session: clears the token and navigates to login.
// It is the only path that ends a session.
func (s *TokenStore) Invalidate(ctx context.Context, reason string) {
	if err := s.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear session token")
	}
	s.log.Warn().Str("reason", reason).Msg("session ended")
	s.toLogin(reason)
}

func (s *TokenStore) setMemory(tok string) {
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

func (s *TokenStore) toLogin(reason string) {
	s.mu.RLock()
	nav := s.nav
	s.mu.RUnlock()
	if nav != nil {
		nav.ToLogin(reason)
	}
}

// CleanLocation returns loc rewritten to the dashboard path with the token
// parameter removed and every other parameter kept.
func CleanLocation(loc *url.URL) *url.URL {
	clean := *loc
	clean.Path = DashboardPath
	clean.RawPath = ""
	q := loc.Query()
	q.Del(TokenParam)
	clean.RawQuery = q.Encode()
	clean.Fragment = ""
	return &clean
}

// ParseLocation parses a location argument. Bare query strings and bare
// tokens are accepted for convenience.
func ParseLocation(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return nil, nil
	case strings.HasPrefix(raw, "?"):
		raw = DashboardPath + raw
	case !strings.ContainsAny(raw, "/?=:"):
		raw = DashboardPath + "?" + TokenParam + "=" + url.QueryEscape(raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	return u, nil
}
