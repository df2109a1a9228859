package websocket

import (
	"context"
	"log/slog"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one user's live change feed. The feed is one-way: a data frame
// from the browser closes the connection with StatusPolicyViolation.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	userID string
	send   chan []byte
	logger *slog.Logger
}

func NewClient(hub *Hub, conn *ws.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		logger: hub.logger.With("user_id", userID),
	}
}

// Run joins the user's feed, greets the client with a connection_ready
// message and forwards broadcasts until the peer goes away.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	start := time.Now()
	c.logger.Debug("feed connected", "clients", c.hub.ClientCount())

	if data, err := NewMessage("connection", "ready", c.userID, nil).encode(); err == nil {
		select {
		case c.send <- data:
		default:
		}
	}

	// CloseRead answers control frames and cancels ctx once the peer closes.
	ctx = c.conn.CloseRead(ctx)
	err := c.forward(ctx)
	c.logger.Debug("feed closed", "duration", time.Since(start), "close_status", ws.CloseStatus(err))
}

// forward writes queued messages and keeps the connection alive with pings.
func (c *Client) forward(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Unregistered by the hub.
				return c.conn.Close(ws.StatusGoingAway, "feed closed")
			}
			if err := c.write(ctx, msg); err != nil {
				return err
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
