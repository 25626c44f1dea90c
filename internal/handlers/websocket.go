package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nftmart/nftmart-api/internal/services"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins (for development)
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// Nft ids this client subscribed to. Empty means every event;
	// otherwise listing events are filtered to these ids. Touched only
	// by the hub goroutine.
	subs map[uint64]bool
}

// event pairs a marketplace event type with its payload so it can
// cross into the hub goroutine without extra locking
type event struct {
	eventType string
	payload   interface{}
}

// Hub maintains the set of active clients and fans marketplace
// events out to them. It implements services.EventSink.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Marketplace events from the market service
	events chan event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Per-nft subscribe and unsubscribe requests
	subscriptions chan subscribeEnvelope
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		events:        make(chan event, 64),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscriptions: make(chan subscribeEnvelope),
		clients:       make(map[*Client]bool),
	}
}

// Publish queues a marketplace event for broadcast. Non-blocking so a
// slow hub never stalls a market operation.
func (h *Hub) Publish(eventType string, payload interface{}) {
	select {
	case h.events <- event{eventType: eventType, payload: payload}:
	default:
		log.Printf("WebSocket hub event queue full, dropping %s", eventType)
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.dropClient(client)
			}
		case sub := <-h.subscriptions:
			if sub.add {
				sub.client.subs[sub.nftID] = true
			} else {
				delete(sub.client.subs, sub.nftID)
			}
		case ev := <-h.events:
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev event) {
	payload, err := json.Marshal(ev.payload)
	if err != nil {
		log.Printf("error marshalling event payload: %v", err)
		return
	}
	message, err := json.Marshal(WebSocketMessage{Type: ev.eventType, Payload: payload})
	if err != nil {
		log.Printf("error marshalling event: %v", err)
		return
	}

	var nftID uint64
	var targeted bool
	if me, ok := ev.payload.(services.MarketEvent); ok && me.Nft != nil {
		nftID, targeted = me.Nft.ID, true
	}

	// Every client gets each event exactly once. A client that has
	// subscribed to specific nfts only receives listing events for them.
	for client := range h.clients {
		if targeted && len(client.subs) > 0 && !client.subs[nftID] {
			continue
		}
		select {
		case client.send <- message:
		default:
			h.dropClient(client)
		}
	}
}

func (h *Hub) dropClient(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

type subscribeEnvelope struct {
	client *Client
	nftID  uint64
	add    bool
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("error parsing message: %v", err)
			continue
		}

		switch wsMessage.Type {
		case "subscribe", "unsubscribe":
			var raw string
			if err := json.Unmarshal(wsMessage.Payload, &raw); err != nil {
				log.Printf("error parsing %s payload: %v", wsMessage.Type, err)
				continue
			}
			nftID, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				response := WebSocketMessage{
					Type:    "error",
					Payload: json.RawMessage(`{"message":"Invalid nft id"}`),
				}
				responseBytes, _ := json.Marshal(response)
				c.send <- responseBytes
				continue
			}
			c.hub.subscriptions <- subscribeEnvelope{client: c, nftID: nftID, add: wsMessage.Type == "subscribe"}
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles WebSocket requests from clients
func ServeWs(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}

		client := &Client{
			hub:  hub,
			conn: conn,
			send: make(chan []byte, 256),
			subs: make(map[uint64]bool),
		}
		client.hub.register <- client

		welcomeMsg := WebSocketMessage{
			Type:    "welcome",
			Payload: json.RawMessage(`{"message":"Connected to Nftmart WebSocket Server"}`),
		}
		welcomeBytes, _ := json.Marshal(welcomeMsg)
		client.send <- welcomeBytes

		go client.writePump()
		go client.readPump()
	}
}
