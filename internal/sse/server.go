// Package sse streams events to browsers over Server-Sent Events.
package sse

import (
	"net/http"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const defaultKeepAlive = 15 * time.Second

type Server struct {
	mux                 sync.RWMutex
	CloseSessionHandler func(id string, session *Session)
	sessions            map[string]*Session
	keepAlive           time.Duration
}

func New() *Server {
	return &Server{
		sessions:  make(map[string]*Session),
		keepAlive: defaultKeepAlive,
	}
}

// Serve registers a new session and streams its events until the client goes
// away or the server is closed. opened runs once the session is registered and
// before anything is written.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, opened func(id string, session *Session)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported.", http.StatusInternalServerError)
		return
	}

	id, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Internal server error.", http.StatusInternalServerError)
		return
	}

	session := newSession(id)

	s.mux.Lock()
	s.sessions[id] = session
	s.mux.Unlock()

	if opened != nil {
		opened(id, session)
	}

	session.Send(&Event{
		Topic: SYSSessionTopic,
		Name:  SYSSessionCreated,
		Data:  id,
	})

	session.listen(w, r, flusher, s.keepAlive)

	s.mux.Lock()
	delete(s.sessions, id)
	s.mux.Unlock()

	session.close()

	if s.CloseSessionHandler != nil {
		s.CloseSessionHandler(id, session)
	}
}

func (s *Server) Get(id string) (*Session, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	session, ok := s.sessions[id]

	return session, ok
}

func (s *Server) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return len(s.sessions)
}

// Close ends every open stream.
func (s *Server) Close() {
	s.mux.RLock()
	defer s.mux.RUnlock()

	for _, session := range s.sessions {
		session.close()
	}
}
