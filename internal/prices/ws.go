package prices

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WSHandler struct {
	bus      *Bus
	origin   string
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(bus *Bus, origin string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		bus:    bus,
		origin: origin,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) },
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := h.bus.Subscribe()
	defer h.bus.Unsubscribe(ch)

	// Reader loop just drains control frames and detects close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ticks, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(map[string]any{"type": "quotes", "data": ticks}); err != nil {
				return
			}
		}
	}
}

func allowOrigin(r *http.Request, allowed string) bool {
	if allowed == "" || allowed == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return strings.EqualFold(strings.TrimRight(origin, "/"), strings.TrimRight(allowed, "/"))
}
