package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard frontend is served from a different origin in dev.
	CheckOrigin: func(*http.Request) bool { return true },
}

// streamMessage is one websocket frame of a streamed scan.
type streamMessage struct {
	Type    string          `json:"type"` // progress, result, error
	Done    int             `json:"done,omitempty"`
	Total   int             `json:"total,omitempty"`
	Ticker  string          `json:"ticker,omitempty"`
	Message string          `json:"message,omitempty"`
	Result  *ScreenResponse `json:"result,omitempty"`
}

// Stream runs a scan and streams per-ticker progress over a websocket. The
// first client frame must be a ScreenRequest; the connection closes after
// the result or error frame.
// GET /api/screen/stream
func (h *ScreenHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req ScreenRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(streamMessage{Type: "error", Message: "invalid scan request"})
		return
	}

	// The progress callback runs synchronously inside the scan loop, so
	// writes to the connection never interleave.
	progress := func(done, total int, ticker string) {
		conn.WriteJSON(streamMessage{Type: "progress", Done: done, Total: total, Ticker: ticker})
	}

	resp, _, err := h.run(r.Context(), req, progress)
	if err != nil {
		conn.WriteJSON(streamMessage{Type: "error", Message: err.Error()})
		return
	}

	conn.WriteJSON(streamMessage{Type: "result", Result: resp})
}
