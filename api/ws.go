package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"splotty-labels/monitor"
	"splotty-labels/preset"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type    string          `json:"type"`
	Data    string          `json:"data,omitempty"`
	Preview *preset.Preview `json:"preview,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mon, ok := h.monitors.Get(id)
	if !ok {
		http.Error(w, "monitor not found", http.StatusNotFound)
		return
	}
	// The tree used for rendering is read once per connection.
	p := h.load(w, mon.Preset)
	if p == nil {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}
	lineMsg := func(line string) wsMessage {
		pv := monitor.Render(p, line)
		return wsMessage{Type: "line", Data: line, Preview: &pv}
	}

	outChan := make(chan string, 256)
	kick := mon.SetClient(outChan)
	defer mon.ClearClient(outChan)

	for _, line := range mon.ScrollbackSnapshot() {
		if err := writeMsg(lineMsg(line)); err != nil {
			h.log.WithError(err).Debug("websocket scrollback replay")
			return
		}
	}

	// Pump live lines until ClearClient closes outChan.
	go func() {
		for line := range outChan {
			if err := writeMsg(lineMsg(line)); err != nil {
				return
			}
		}
	}()

	// Close the connection when the device ends or a newer client takes
	// over, so the read loop below unblocks.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-mon.Done():
			writeMsg(wsMessage{Type: "closed"}) //nolint:errcheck
			conn.Close()
		case <-kick:
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	// Clients only send control frames; drain until the connection ends.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
