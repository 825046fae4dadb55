package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/agent"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/conv"
	"github.com/sandevgo/searchbot/pkg/log"
)

const maxMessageBytes = 16 << 10

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type turnView struct {
	Role string
	HTML template.HTML
}

type indexView struct {
	BotName string
	HasKey  bool
	Turns   []turnView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	turns := sess.Turns()
	view := indexView{
		BotName: core.BotName,
		HasKey:  sess.APIKey() != "",
		Turns:   make([]turnView, 0, len(turns)),
	}
	for _, t := range turns {
		view.Turns = append(view.Turns, turnView{
			Role: t.Role,
			// sanitized by bluemonday
			HTML: template.HTML(conv.MarkdownToHTML([]byte(t.Text))),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", view); err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to render index")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type historyResponse struct {
	SessionID string         `json:"session_id"`
	HasKey    bool           `json:"has_key"`
	Turns     []session.Turn `json:"turns"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		SessionID: sess.ID,
		HasKey:    sess.APIKey() != "",
		Turns:     sess.Turns(),
	})
}

// handleKey stores the completion credential in the in-memory session only.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.FormValue("api_key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess.SetAPIKey(key)
	w.WriteHeader(http.StatusNoContent)
}

// handleChat runs one cycle and streams its events as server-sent events.
// A cycle that cannot start (busy session) gets a plain JSON error instead.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	message := strings.TrimSpace(r.FormValue("message"))
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	stream := newEventStream(w)
	_, err = s.runner.Run(r.Context(), sess, message, stream.send)
	if err == nil {
		return
	}

	if !stream.started() {
		s.fail(w, r, err)
		return
	}
	if !errors.Is(err, agent.ErrMissingCredential) {
		// missing credentials already produced an error event
		stream.send(agent.Event{Kind: agent.EventError, Text: err.Error()})
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.sessions.Reset(r.Context(), sess.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		SessionID: sess.ID,
		HasKey:    sess.APIKey() != "",
		Turns:     sess.Turns(),
	})
}

// handleEnd destroys the session and forgets the cookie.
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookie)
	if err == nil && validID(c.Value) {
		if err := s.sessions.Destroy(r.Context(), c.Value); err != nil && !errors.Is(err, session.ErrNotFound) {
			s.fail(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.FromCtx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, code, err.Error())
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
