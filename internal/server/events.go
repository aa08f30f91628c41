package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"splicer/internal/logging"
)

const (
	eventBuffer  = 16
	writeTimeout = 10 * time.Second
)

// handleEvents streams job snapshots as JSON text frames. The first frame is
// the current job; later frames follow every published change. Slow clients
// miss intermediate snapshots but always see the newest one.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.WithContext(r.Context(), s.logger).Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := s.manager.Subscribe(eventBuffer)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case job, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(s.jobPayload(job)); err != nil {
				logging.WithContext(r.Context(), s.logger).Debug("websocket client gone", logging.Error(err))
				return
			}
		case <-closed:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}
