package nvmonitor

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	Ns "github.com/kalin91/nvmonitor/server"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPingPeriod = 30 * time.Second
)

// WindowMessage is pushed to websocket clients
type WindowMessage struct {
	Event  string     `json:"event"` // window, toggle or present
	Window WindowData `json:"window"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func eventName(kind Ns.EventKind) string {
	switch kind {
	case Ns.EventToggle:
		return "toggle"
	case Ns.EventPresent:
		return "present"
	default:
		return "window"
	}
}

// WebsocketHandler sends the window on connect and again on every
// Monitor event until the client goes away
func (v *View) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := v.Monitor.Subscribe()
	defer cancel()

	// Reads only to notice the close
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(kind Ns.EventKind) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		msg := WindowMessage{Event: eventName(kind), Window: v.GetWindowData()}
		if err := conn.WriteJSON(msg); err != nil {
			slog.Debug("Websocket closed", slog.Any("Error", err))
			return false
		}
		return true
	}

	if !send(Ns.EventSample) {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case kind := <-events:
			if !send(kind) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
