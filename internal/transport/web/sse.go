package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/sandevgo/searchbot/internal/service/agent"
	"github.com/sandevgo/searchbot/pkg/conv"
)

// wireEvent is an agent.Event plus, for answers, the sanitized HTML the
// transcript shows for the same turn after a reload.
type wireEvent struct {
	agent.Event
	HTML string `json:"html,omitempty"`
}

// eventStream writes runner events as server-sent events. Headers go out
// with the first event, so a cycle that never starts can still answer with a
// regular status code. Safe for concurrent senders.
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	open    bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	f, _ := w.(http.Flusher)
	return &eventStream{w: w, flusher: f}
}

func (e *eventStream) send(ev agent.Event) {
	out := wireEvent{Event: ev}
	if ev.Kind == agent.EventAnswer {
		out.HTML = conv.MarkdownToHTML([]byte(ev.Text))
	}
	data, err := json.Marshal(out)
	if err != nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		h := e.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		e.w.WriteHeader(http.StatusOK)
		e.open = true
	}

	fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", ev.Kind, data)
	if e.flusher != nil {
		e.flusher.Flush()
	}
}

func (e *eventStream) started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}
