package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

const watchWriteTimeout = 10 * time.Second

// handleWatchMeetings upgrades to a websocket and streams the full meeting
// list, newest first, once on connect and again after every change. Each
// frame is a complete snapshot; clients replace, never merge.
func (s *Server) handleWatchMeetings(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	watch, err := s.service.WatchMeetings(r.Context())
	if err != nil {
		s.logger.Error("failed to start meeting watch", "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "watch unavailable"),
			time.Now().Add(watchWriteTimeout))
		return
	}
	defer watch.Close()

	// Drain the read side so client close frames are processed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-watch.Snapshots():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteJSON(snapshot); err != nil {
				s.logger.Debug("watch client write failed", "error", err)
				return
			}
		case err, ok := <-watch.Errors():
			if ok && err != nil {
				s.logger.Error("meeting watch error", "error", err)
			}
			return
		case <-clientGone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
