/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/buzzer/games/trivia"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Inbound frame: {"type": <command>, "data": <payload>, "ack": <request id>}
type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	Ack  json.RawMessage `json:"ack,omitempty"`
}

type ackMessage struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id"`
	Data *trivia.Ack     `json:"data"`
}

type Client struct {
	id     trivia.ConnID
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// Hub tracks live connections and implements trivia.Transport. Delivery never
// blocks: a client whose buffer is full misses the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[trivia.ConnID]*Client
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[trivia.ConnID]*Client),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.id] = c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) Send(id trivia.ConnID, msg trivia.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if c, ok := h.clients[id]; ok {
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) Broadcast(msg trivia.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) reply(c *Client, id json.RawMessage, ack *trivia.Ack) {
	data, err := json.Marshal(ackMessage{Type: "ack", ID: id, Data: ack})
	if err != nil {
		h.logger.Error("failed to marshal ack", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c.id]; ok {
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) enqueueLocked(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("client buffer full, skipping", "conn", c.id)
	}
}

// handle decodes one inbound frame and runs it against the engine.
func (h *Hub) handle(engine *trivia.Engine, c *Client, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn("invalid message format", "conn", c.id, "error", err)
		return
	}

	wantsAck := len(msg.Ack) > 0 && string(msg.Ack) != "null"

	cmd, err := trivia.DecodeCommand(msg.Type, msg.Data)
	if err != nil {
		h.logger.Warn("rejected command", "conn", c.id, "type", msg.Type, "error", err)
		if wantsAck {
			h.reply(c, msg.Ack, &trivia.Ack{Success: false, Error: "Invalid request"})
		}
		return
	}

	ack := engine.Dispatch(c.id, cmd)
	if wantsAck && ack != nil {
		h.reply(c, msg.Ack, ack)
	}
}

func (c *Client) readPump(h *Hub, engine *trivia.Engine) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("websocket error", "conn", c.id, "error", err)
			}
			return
		}

		h.handle(engine, c, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func serveWS(cfg *Config, hub *Hub, engine *trivia.Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Error("websocket upgrade failed", "error", err)
			return
		}

		c := &Client{
			id:     trivia.ConnID(uuid.NewString()),
			conn:   conn,
			send:   make(chan []byte, sendBuffer),
			remote: realIP(r),
		}

		hub.register(c)
		engine.Connect(c.id)

		logf(cfg, "GAMES: Connection %s opened from %s", c.id, c.remote)

		go c.writePump()
		c.readPump(hub, engine)

		hub.unregister(c)
		engine.Disconnect(c.id)
		_ = conn.Close()

		logf(cfg, "GAMES: Connection %s from %s closed", c.id, c.remote)
	}
}

// joinURL rebuilds the public address of the game from the request.
func joinURL(cfg *Config, r *http.Request) string {
	scheme := cfg.scheme()
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/"
}

func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		target := joinURL(cfg, r)
		if path := strings.TrimSpace(r.URL.Query().Get("path")); strings.HasPrefix(path, "/") {
			target = strings.TrimSuffix(target, "/") + path
		}

		const qrSize = 320
		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: QR code for %s (%s) to %s in %s",
			target,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func registerBuzzerGame(cfg *Config, mux *httprouter.Router, hub *Hub, engine *trivia.Engine, errs chan<- error) {
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, hub, engine))
	mux.GET(cfg.prefix+"/qr", serveQR(cfg, errs))
}
