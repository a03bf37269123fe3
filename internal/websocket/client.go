package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"support-chat-be/pkg/identity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// Client is a middleman between one websocket connection and the hub. It
// carries the verified identity established at handshake time.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	identity identity.Identity

	// parent context for this connection's RPCs; cancelled on disconnect
	// so in-flight store calls are released
	ctx    context.Context
	cancel context.CancelFunc

	// Buffered channel of outbound frames.
	send chan []byte

	// guards closed; once closed no frame is ever queued again
	mu     sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, id identity.Identity) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:      hub,
		conn:     conn,
		identity: id,
		ctx:      ctx,
		cancel:   cancel,
		send:     make(chan []byte, sendBufferSize),
	}
}

func (c *Client) Identity() identity.Identity {
	return c.identity
}

func (c *Client) UserID() uuid.UUID {
	return c.identity.UserID
}

// trySend queues a frame without blocking. Returns false when the client
// is closed or its buffer is full; a full buffer means the peer stopped
// draining and the caller should drop the connection.
func (c *Client) trySend(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// markClosed seals the send channel. Safe to call more than once.
func (c *Client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// sendResponse marshals and queues an RPC reply on this connection.
func (c *Client) sendResponse(res Response) {
	frame, err := json.Marshal(res)
	if err != nil {
		return
	}
	c.trySend(frame)
}

// readPump owns inbound traffic: it reads request frames and dispatches
// them until the connection dies, then unregisters the client.
func (c *Client) readPump(dispatcher *Dispatcher) {
	defer func() {
		c.cancel()
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"user_id": c.identity.UserID,
					"error":   err.Error(),
				})
			}
			break
		}

		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			c.sendResponse(Response{Ok: false, Error: &ErrorBody{
				Code:    "INVALID_ARGUMENT",
				Message: "malformed request frame",
			}})
			continue
		}

		c.sendResponse(dispatcher.Dispatch(c, req))
	}
}

// writePump owns outbound traffic: frames queued on send, plus pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
