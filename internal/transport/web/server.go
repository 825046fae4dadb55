package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/sandevgo/searchbot/internal/service/agent"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/log"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "searchbot_session"

// Sessions is the part of session.Manager the web transport needs.
type Sessions interface {
	NewID() string
	GetOrCreate(ctx context.Context, id string) (*session.Session, error)
	Reset(ctx context.Context, id string) error
	Destroy(ctx context.Context, id string) error
}

type Options struct {
	Addr string
	// SharedKey, when set, is used for sessions that never entered a key.
	SharedKey string
	// SecureCookie marks the session cookie Secure (serve behind TLS).
	SecureCookie bool
}

// Server is the browser front-end. Each browser session owns one
// conversation; its id lives in an HttpOnly cookie.
type Server struct {
	opts     Options
	runner   agent.Runner
	sessions Sessions
	tmpl     *template.Template
	http     *http.Server
}

func NewServer(opts Options, runner agent.Runner, sessions Sessions) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		opts:     opts,
		runner:   runner,
		sessions: sessions,
		tmpl:     tmpl,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/key", s.handleKey)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/end", s.handleEnd)
	return s.logRequests(mux)
}

func (s *Server) Start(ctx context.Context) error {
	s.http.BaseContext = func(net.Listener) context.Context { return ctx }

	log.FromCtx(ctx).Info().Str("addr", s.opts.Addr).Msg("starting web server")
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.FromCtx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

// session resolves the cookie to a live session, creating one (and the
// cookie) on first use.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil && validID(c.Value) {
		id = c.Value
	}
	if id == "" {
		id = s.sessions.NewID()
	}

	sess, err := s.sessions.GetOrCreate(r.Context(), id)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	if s.opts.SharedKey != "" && sess.APIKey() == "" {
		sess.SetAPIKey(s.opts.SharedKey)
	}
	return sess, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, agent.ErrMissingCredential):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
