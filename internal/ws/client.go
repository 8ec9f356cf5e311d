package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/edward93/project-joke-web/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The coordinator trusts its reverse proxy for origin policy
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one participant's transport connection
type Client struct {
	userID model.UserID
	conn   *websocket.Conn
	send   chan []byte

	dispatcher  *Dispatcher
	connectedAt time.Time
	logger      *slog.Logger
}

// enqueue queues a message for delivery, reporting false when the client's
// buffer is full
func (c *Client) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// Send marshals an envelope and queues it for this client alone
func (c *Client) Send(env Envelope) {
	data, err := env.Marshal()
	if err != nil {
		c.logger.Error("failed to marshal event",
			slog.String("event", string(env.Type)),
			slog.Any("error", err))
		return
	}
	if !c.enqueue(data) {
		c.logger.Warn("message dropped - client buffer full")
	}
}

// readPump reads inbound events and hands them to the dispatcher.
// One readPump runs per connection; it owns all reads.
func (c *Client) readPump() {
	defer func() {
		c.dispatcher.Disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", slog.Any("error", err))
			}
			return
		}
		c.dispatcher.HandleMessage(c, message)
	}
}

// writePump writes queued messages and keepalive pings.
// One writePump runs per connection; it owns all writes.
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

// ServeWS upgrades an HTTP request to a WebSocket connection, assigns the
// connection its opaque user id, and starts the read/write pumps
func ServeWS(dispatcher *Dispatcher, logger *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	userID := model.UserID(uuid.NewString())
	client := &Client{
		userID:      userID,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		dispatcher:  dispatcher,
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("user_id", string(userID))),
	}

	dispatcher.Connect(client)

	go client.writePump()
	go client.readPump()
}
