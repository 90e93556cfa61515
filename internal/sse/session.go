package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const sessionBufferSize = 16

type Session struct {
	id       string
	messages chan []byte
	done     chan struct{}
	once     sync.Once
}

func newSession(id string) *Session {
	return &Session{
		id:       id,
		messages: make(chan []byte, sessionBufferSize),
		done:     make(chan struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Send queues the event without blocking. It reports false when the event was
// dropped because the session is closed or its buffer is full.
func (s *Session) Send(e *Event) bool {
	data, err := json.Marshal(e)
	if err != nil {
		return false
	}

	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.messages <- data:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Session) listen(w http.ResponseWriter, r *http.Request, flusher http.Flusher, keepAlive time.Duration) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.messages:
			if _, err := fmt.Fprintf(w, "data: %s\n\n", message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-s.done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
