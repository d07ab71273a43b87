package api

import (
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"tradeos-core/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope wraps every outbound websocket message with its stream type.
type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// websocket streams price ticks and device signals for one session. Clients
// open the socket and send {"type":"subscribe","userId":...} to pick the
// session to follow.
func (s *Server) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	var sub struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	if err := conn.ReadJSON(&sub); err != nil || sub.Type != "subscribe" || sub.UserID == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"expected subscribe message with userId"}`))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	sess := s.Registry.Get(sub.UserID)
	if sess == nil {
		_ = conn.WriteJSON(gin.H{"error": errSimulatorNotStarted})
		return
	}

	s.trackWSClient(1)
	defer s.trackWSClient(-1)

	prices, unsubPrices := sess.Bus().Subscribe(events.EventPriceTick, 100)
	defer unsubPrices()
	devices, unsubDevices := sess.Bus().Subscribe(events.EventDeviceSignal, 100)
	defer unsubDevices()

	// Replay the buffered history so charts paint immediately.
	for _, tick := range sess.History().Ticks() {
		if err := conn.WriteJSON(wsEnvelope{Type: "price", Data: tick}); err != nil {
			return
		}
	}

	// Reader goroutine detects the client closing the socket.
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
		case <-closed:
			return
		case msg, ok := <-prices:
			if !ok {
				return
			}
			if err := conn.WriteJSON(wsEnvelope{Type: "price", Data: msg}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case msg, ok := <-devices:
			if !ok {
				return
			}
			if err := conn.WriteJSON(wsEnvelope{Type: "device", Data: msg}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}
}

func (s *Server) trackWSClient(delta int64) {
	n := atomic.AddInt64(&s.wsClients, delta)
	if s.Metrics != nil {
		s.Metrics.SetWSClients(int(n))
	}
}
