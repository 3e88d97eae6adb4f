package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"chunkloader/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type  string          `json:"type"`
	Field string          `json:"field,omitempty"`
	Value json.RawMessage `json:"value,omitempty"` // string, number or boolean
	Error string          `json:"error,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "session", s.ID, "error", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket allows one concurrent writer.
	var writeMu sync.Mutex
	writeRaw := func(data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, data)
	}
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	outChan := make(chan []byte, 64)
	displaced := s.SetClient(outChan)
	defer s.ClearClient(outChan)

	if err := writeRaw(s.Snapshot()); err != nil {
		slog.Warn("ws initial state write failed", "session", s.ID, "error", err)
		return
	}

	// Pump updates produced by builder mutations. Exits when ClearClient
	// closes outChan.
	go func() {
		for data := range outChan {
			if err := writeRaw(data); err != nil {
				return
			}
		}
	}()

	// Close the connection on session end or displacement so ReadMessage below
	// unblocks immediately.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-s.Done():
			writeMsg(wsMessage{Type: "closed"}) //nolint:errcheck
			conn.Close()
		case <-displaced:
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if werr := writeMsg(wsMessage{Type: "error", Error: "malformed message"}); werr != nil {
				return
			}
			continue
		}
		if err := h.applyWS(s, msg); err != nil {
			if werr := writeMsg(wsMessage{Type: "error", Error: err.Error()}); werr != nil {
				return
			}
		}
	}
}

// applyWS runs one client instruction. The resulting update reaches the
// client through the session subscription, not from here.
func (h *handler) applyWS(s *session.Session, msg wsMessage) error {
	switch msg.Type {
	case "set":
		return s.Builder().Apply(msg.Field, rawValue(msg.Value))
	case "reset":
		return s.Builder().Reset()
	}
	return errUnknownMessage(msg.Type)
}

type errUnknownMessage string

func (e errUnknownMessage) Error() string {
	return "unknown message type " + string(e)
}
