package auth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// DefaultListenAddr is where the hand-off receiver listens by default.
const DefaultListenAddr = "127.0.0.1:8976"

// Receiver is a loopback HTTP endpoint that accepts the one-time token
// redirect from the login flow, persists it, and scrubs it from the
// browser location with a 303 redirect.
type Receiver struct {
	store    *TokenStore
	loginURL string
	addr     string
	log      zerolog.Logger

	tokens chan string

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	last     string
}

// NewReceiver creates a Receiver. loginURL is the backend's OAuth entry
// point; addr is the listen address.
func NewReceiver(store *TokenStore, loginURL, addr string, log zerolog.Logger) *Receiver {
	if addr == "" {
		addr = DefaultListenAddr
	}
	return &Receiver{
		store:    store,
		loginURL: loginURL,
		addr:     addr,
		log:      log,
		tokens:   make(chan string, 1),
	}
}

// Tokens delivers each newly captured token once.
func (r *Receiver) Tokens() <-chan string {
	return r.tokens
}

// Handler returns the receiver's routes.
func (r *Receiver) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Get("/healthz", r.healthz)
	mux.Get("/login", r.login)
	mux.Get("/oauth-success", r.capture)
	mux.Get(DashboardPath, r.dashboard)
	mux.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/login", http.StatusFound)
	})
	return mux
}

// Start begins listening and serving in the background. It returns once the
// listener is bound.
func (r *Receiver) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.srv != nil {
		return errors.New("receiver already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", r.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", r.addr, err)
	}
	srv := &http.Server{
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	r.srv = srv
	r.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error().Err(err).Msg("login receiver stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		_ = r.Stop(context.Background())
	}()

	r.log.Info().Str("addr", ln.Addr().String()).Msg("login receiver listening")
	return nil
}

// URL returns the receiver's login URL. Valid after Start.
func (r *Receiver) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	addr := r.addr
	if r.listener != nil {
		addr = r.listener.Addr().String()
	}
	return "http://" + addr + "/login"
}

// Stop shuts the server down.
func (r *Receiver) Stop(ctx context.Context) error {
	r.mu.Lock()
	srv := r.srv
	r.srv = nil
	r.listener = nil
	r.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (r *Receiver) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Receiver) login(w http.ResponseWriter, req *http.Request) {
	if req.URL.Query().Get(TokenParam) != "" {
		r.capture(w, req)
		return
	}
	http.Redirect(w, req, r.loginURL, http.StatusFound)
}

func (r *Receiver) dashboard(w http.ResponseWriter, req *http.Request) {
	if req.URL.Query().Get(TokenParam) != "" {
		r.capture(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = donePage.Execute(w, struct{ SignedIn bool }{SignedIn: r.store.Token() != ""})
}

// capture persists the token and replaces the location with a token-free one.
func (r *Receiver) capture(w http.ResponseWriter, req *http.Request) {
	tok := strings.TrimSpace(req.URL.Query().Get(TokenParam))
	if tok == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}
	if err := r.store.Set(req.Context(), tok); err != nil {
		r.log.Error().Err(err).Msg("failed to persist token from login redirect")
		http.Error(w, "could not save session", http.StatusInternalServerError)
		return
	}
	r.notify(tok)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
	http.Redirect(w, req, CleanLocation(req.URL).RequestURI(), http.StatusSeeOther)
}

func (r *Receiver) notify(tok string) {
	r.mu.Lock()
	if tok == r.last {
		r.mu.Unlock()
		return
	}
	r.last = tok
	r.mu.Unlock()

	// Keep only the newest token if nobody has read the previous one.
	for {
		select {
		case r.tokens <- tok:
			return
		default:
		}
		select {
		case <-r.tokens:
		default:
		}
	}
}

var donePage = template.Must(template.New("done").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>hackdash</title></head>
<body style="font-family: sans-serif; margin: 3rem;">
{{if .SignedIn}}<h1>Signed in</h1><p>You can close this tab and return to the terminal.</p>
{{else}}<h1>Not signed in</h1><p><a href="/login">Sign in with Google</a></p>{{end}}
</body></html>
`))
