package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"partners-cli/internal/notify"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Same-origin only.
		host := strings.TrimSpace(r.Host)
		return strings.HasSuffix(origin, "://"+host)
	},
}

// handleWS streams notifications to a page as JSON text frames. A page passes
// ?since=<seq> to replay what it has not rendered yet.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.log.Debug(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sub := s.cfg.Hub.Subscribe(notify.DefaultBuffer)
	defer sub.Close()

	if v := r.URL.Query().Get("since"); v != "" {
		if since, err := strconv.ParseUint(v, 10, 64); err == nil {
			for _, n := range s.cfg.Hub.Since(since) {
				if err := writeNotification(conn, n); err != nil {
					return
				}
			}
		}
	}

	// The reader only exists to notice the client going away and to handle pongs.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	// Closing the connection unblocks the reader; wait so it never outlives the handler.
	defer func() {
		_ = conn.Close()
		<-done
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case n, ok := <-sub.C():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := writeNotification(conn, n); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func writeNotification(conn *websocket.Conn, n notify.Notification) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(n)
}
