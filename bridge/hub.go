package bridge

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/readm/vcdtrace/internal/logging"
)

// hub owns the upgrade/register/remove lifecycle for client connections,
// mirroring the teacher's wsHub — but each client here drives its own
// query loop instead of subscribing to a shared broadcast channel, since
// queries are per-client requests rather than a simulation's push feed.
type hub struct {
	upgrader websocket.Upgrader
	register chan *websocket.Conn
	remove   chan *websocket.Conn
	clients  map[*websocket.Conn]bool
}

func newHub() *hub {
	h := &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		register: make(chan *websocket.Conn),
		remove:   make(chan *websocket.Conn),
		clients:  make(map[*websocket.Conn]bool),
	}
	go h.run()
	return h
}

func (h *hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
		}
	}
}

func (h *hub) serve(s *Server, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Default().Errorf("websocket upgrade failed: %v", err)
		return
	}
	h.register <- conn
	logging.Default().Infof("client connected")

	defer func() {
		h.remove <- conn
		logging.Default().Infof("client disconnected")
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Default().Warnf("websocket error: %v", err)
			}
			return
		}

		var req QueryRequest
		if err := json.Unmarshal(message, &req); err != nil {
			logging.Default().Warnf("malformed query request: %v", err)
			continue
		}

		resp := s.runQuery(req)
		data, err := json.Marshal(resp)
		if err != nil {
			logging.Default().Errorf("failed to marshal query response: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.Default().Warnf("failed to send frame: %v", err)
			return
		}
	}
}
