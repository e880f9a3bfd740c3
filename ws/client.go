package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rtchat/auth"
	"rtchat/hub"
	"rtchat/services"
)

const (
	writeWait  = 30 * time.Second
	pongWait   = 300 * time.Second
	pingPeriod = 240 * time.Second
	readLimit  = 1 << 20
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS: allow all for demo
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway upgrades HTTP requests to realtime connections. The handshake
// accepts an optional credential; a missing or invalid one leaves the
// connection able to join rooms and receive, but not to submit.
type Gateway struct {
	hub     *hub.Hub
	authSvc *services.AuthService
	msgSvc  *services.MessageService
	// strict surfaces submission failures as error events instead of
	// dropping them silently.
	strict bool
	log    *slog.Logger
}

func NewGateway(h *hub.Hub, a *services.AuthService, m *services.MessageService, strict bool, log *slog.Logger) *Gateway {
	return &Gateway{hub: h, authSvc: a, msgSvc: m, strict: strict, log: log}
}

func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	var identity *auth.Identity
	if token := r.URL.Query().Get("token"); token != "" {
		if ident, err := g.authSvc.VerifyToken(token); err == nil {
			identity = &ident
		} else {
			g.log.Debug("handshake token rejected, connection stays unauthenticated",
				"remote", r.RemoteAddr)
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	client := &Client{
		id:       uuid.NewString(),
		gw:       g,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		identity: identity,
	}
	g.log.Info("websocket connected",
		"client", client.id, "authenticated", identity != nil, "remote", r.RemoteAddr)

	go client.writePump()
	go client.readPump()
}

// Client is one websocket connection. It implements hub.Subscriber.
type Client struct {
	id       string
	gw       *Gateway
	conn     *websocket.Conn
	send     chan []byte
	identity *auth.Identity

	mu     sync.Mutex
	closed bool
}

func (c *Client) ID() string { return c.id }

// Notify hands a payload to the write pump without blocking. It reports
// false once the client is closed or its buffer is full.
func (c *Client) Notify(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close releases the write pump. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// event is the single frame shape spoken on the socket, both directions.
type event struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id,omitempty"`
	Content string          `json:"content,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (c *Client) readPump() {
	defer func() {
		c.gw.hub.Drop(c)
		c.conn.Close()
		c.gw.log.Info("websocket disconnected", "client", c.id)
	}()
	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gw.log.Warn("read error", "client", c.id, "err", err)
			}
			return
		}

		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.gw.log.Debug("unparsable frame", "client", c.id, "err", err)
			continue
		}

		switch ev.Type {
		case "ping":
			c.Notify(mustMarshal(event{Type: "pong"}))
		case "pong":
			// connection is healthy
		case "room:join":
			if ev.RoomID != "" {
				c.gw.hub.Join(c, ev.RoomID)
			}
		case "room:leave":
			if ev.RoomID != "" {
				c.gw.hub.Leave(c, ev.RoomID)
			}
		case "message:send":
			c.handleSend(ev)
		default:
			c.gw.log.Debug("unknown event type", "client", c.id, "type", ev.Type)
		}
	}
}

// handleSend is the persistent-connection submission path. Failures are
// dropped silently unless strict mode is on.
func (c *Client) handleSend(ev event) {
	if ev.RoomID == "" || ev.Content == "" {
		c.reject("room_id and content required")
		return
	}
	if c.identity == nil {
		c.reject("authentication required")
		return
	}
	if _, err := c.gw.msgSvc.Send(ev.RoomID, c.identity.UserID, ev.Content); err != nil {
		c.reject(err.Error())
	}
}

func (c *Client) reject(reason string) {
	c.gw.log.Debug("submission rejected", "client", c.id, "reason", reason)
	if !c.gw.strict {
		return
	}
	c.Notify(mustMarshal(event{Type: "error", Error: reason}))
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

func mustMarshal(ev event) []byte {
	b, _ := json.Marshal(ev)
	return b
}
