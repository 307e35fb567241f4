package monitoring

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// JobEvent is one progress update from a data-quality batch job.
type JobEvent struct {
	Job       string    `json:"job"` // "geocode", "merge", "visa"
	Phase     string    `json:"phase"`
	Message   string    `json:"message"`
	Processed int       `json:"processed"`
	Timestamp time.Time `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans batch-job progress events out to connected websocket clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan JobEvent
}

func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan JobEvent, 16),
	}
	go h.run()
	return h
}

// Publish queues an event for all connected clients. Drops the event when
// the hub is saturated; progress updates are advisory.
func (h *Hub) Publish(event JobEvent) {
	event.Timestamp = time.Now()
	select {
	case h.broadcast <- event:
	default:
	}
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the client goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			break
		}
	}
}

func (h *Hub) run() {
	for event := range h.broadcast {
		h.clientsMux.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(event); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.clientsMux.Unlock()
	}
}
