package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"support-chat-be/internal/pkg/logger"
	"support-chat-be/pkg/identity"
)

// Handler performs the websocket handshake: verify the credential first,
// upgrade second. A connection that fails verification is rejected before
// it is ever registered.
type Handler struct {
	hub        *Hub
	dispatcher *Dispatcher
	verifier   identity.Verifier
	logger     logger.ILogger
}

func NewHandler(hub *Hub, dispatcher *Dispatcher, verifier identity.Verifier, log logger.ILogger) *Handler {
	return &Handler{
		hub:        hub,
		dispatcher: dispatcher,
		verifier:   verifier,
		logger:     log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *Handler) ServeWs(c *fiber.Ctx) error {
	// Token source priority: query param (browser), then Authorization
	// header (tooling).
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	id, err := h.verifier.Verify(tokenStr)
	if err != nil {
		h.logger.Warn("Handler", "Rejected WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or missing token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("Handler", "Starting WebSocket session", map[string]interface{}{"user_id": id.UserID, "role": id.Role})
			h.serve(conn, id)
			h.logger.Info("Handler", "WebSocket session ended", map[string]interface{}{"user_id": id.UserID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *Handler) serve(conn *websocket.Conn, id identity.Identity) {
	client := newClient(h.hub, conn, id)
	h.hub.Register(client)

	go client.writePump()
	client.readPump(h.dispatcher) // runs on the handler goroutine
}
