package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AlertMessage is one event on the live alert feed
type AlertMessage struct {
	Type        string `json:"type"`
	PatientName string `json:"patientName,omitempty"`
	SubjectID   string `json:"subjectId"`
	At          string `json:"at"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// dashboards connect from a different origin than the api
	CheckOrigin: func(r *http.Request) bool { return true },
}

var alertFeed = struct {
	sync.Mutex
	conns map[*websocket.Conn]bool
}{conns: map[*websocket.Conn]bool{}}

// HandleAlertsWebSocket upgrades the connection and keeps it registered on
// the alert feed until the peer goes away
func HandleAlertsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().With(err).Error("failed to upgrade alert feed connection")
		return
	}

	alertFeed.Lock()
	alertFeed.conns[conn] = true
	alertFeed.Unlock()

	// drain reads so pings and close frames are processed; the feed is
	// write-only from our side
	go func() {
		defer func() {
			alertFeed.Lock()
			delete(alertFeed.conns, conn)
			alertFeed.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastAlert pushes a message to every connected dashboard. A connection
// that fails to take the write is dropped from the feed.
func BroadcastAlert(msg AlertMessage) {
	alertFeed.Lock()
	defer alertFeed.Unlock()
	for conn := range alertFeed.conns {
		if err := conn.WriteJSON(msg); err != nil {
			zap.S().Debugw("dropping dead alert feed connection",
				"error", err)
			conn.Close()
			delete(alertFeed.conns, conn)
		}
	}
}
