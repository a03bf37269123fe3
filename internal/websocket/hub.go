package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/service"
)

const bridgeChannel = "support_chat_events"

// Hub is the connection registry and event fan-out broadcaster. It tracks
// which live connections watch which rooms (and which watch their "mine"
// feed) and delivers each event exactly once per connection.
//
// An optional redis pub/sub bridge relays events to other instances; with
// no redis configured the hub is a single-process broker.
type Hub struct {
	mu sync.RWMutex

	clients map[*Client]struct{}

	// room id -> subscribed connections
	byRoom map[uuid.UUID]map[*Client]struct{}

	// reverse index so Unregister drops all subscriptions in one pass
	roomsOf map[*Client]map[uuid.UUID]struct{}

	// user id -> connections subscribed to their "mine" feed
	mineByUser map[uuid.UUID]map[*Client]struct{}

	// staff connections subscribed to "mine" (waiting pool + own rooms)
	staffMine map[*Client]struct{}

	instanceID string
	rdb        *redis.Client
	logger     logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		byRoom:     make(map[uuid.UUID]map[*Client]struct{}),
		roomsOf:    make(map[*Client]map[uuid.UUID]struct{}),
		mineByUser: make(map[uuid.UUID]map[*Client]struct{}),
		staffMine:  make(map[*Client]struct{}),
		instanceID: uuid.NewString(),
		rdb:        rdb,
		logger:     log,
	}
}

// Run starts the cross-instance bridge listener. No-op without redis.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeBridge(ctx)
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": c.UserID()})
}

// Unregister drops the client and all of its subscriptions atomically.
// After it returns no further event is delivered to the connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for roomId := range h.roomsOf[c] {
		if subs, ok := h.byRoom[roomId]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.byRoom, roomId)
			}
		}
	}
	delete(h.roomsOf, c)
	if subs, ok := h.mineByUser[c.UserID()]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.mineByUser, c.UserID())
		}
	}
	delete(h.staffMine, c)
	h.mu.Unlock()

	// markClosed happens outside the registry lock but is itself guarded;
	// trySend observes it before queueing.
	c.markClosed()
	h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": c.UserID()})
}

// SubscribeRoom is idempotent: subscribing twice delivers events once.
func (h *Hub) SubscribeRoom(c *Client, roomId uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	if h.byRoom[roomId] == nil {
		h.byRoom[roomId] = make(map[*Client]struct{})
	}
	h.byRoom[roomId][c] = struct{}{}
	if h.roomsOf[c] == nil {
		h.roomsOf[c] = make(map[uuid.UUID]struct{})
	}
	h.roomsOf[c][roomId] = struct{}{}
}

// SubscribeMine marks the connection for lifecycle events on all rooms the
// identity participates in; staff additionally watch the waiting pool.
func (h *Hub) SubscribeMine(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	if h.mineByUser[c.UserID()] == nil {
		h.mineByUser[c.UserID()] = make(map[*Client]struct{})
	}
	h.mineByUser[c.UserID()][c] = struct{}{}
	if c.identity.IsStaff() {
		h.staffMine[c] = struct{}{}
	}
}

// RoomEvent implements service.EventBroadcaster.
func (h *Hub) RoomEvent(targets service.BroadcastTargets, eventType string, room dto.RoomResponse) {
	h.push(targets, Push{
		Event: EventRoom,
		Data:  RoomEventPayload{Type: eventType, Room: room},
	})
}

// MessageEvent implements service.EventBroadcaster.
func (h *Hub) MessageEvent(targets service.BroadcastTargets, message dto.MessageResponse) {
	h.push(targets, Push{
		Event: EventMessage,
		Data:  MessageEventPayload{Type: "message", Message: message},
	})
}

func (h *Hub) push(targets service.BroadcastTargets, p Push) {
	frame, err := json.Marshal(p)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal push frame", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(targets, frame)
	h.publishBridge(targets, frame)
}

// deliverLocal resolves the union of the target sets and queues the frame
// exactly once per connection. A connection whose buffer is full is
// treated as dead and dropped; delivery to the rest continues.
func (h *Hub) deliverLocal(targets service.BroadcastTargets, frame []byte) {
	h.mu.RLock()
	recipients := make(map[*Client]struct{})
	if targets.RoomID != nil {
		for c := range h.byRoom[*targets.RoomID] {
			recipients[c] = struct{}{}
		}
	}
	for _, userId := range targets.MineUsers {
		for c := range h.mineByUser[userId] {
			recipients[c] = struct{}{}
		}
	}
	if targets.StaffMine {
		for c := range h.staffMine {
			recipients[c] = struct{}{}
		}
	}
	h.mu.RUnlock()

	for c := range recipients {
		if !c.trySend(frame) {
			h.logger.Warn("Hub", "Client not draining, dropping connection", map[string]interface{}{"user_id": c.UserID()})
			go func(stale *Client) {
				h.Unregister(stale)
				if stale.conn != nil {
					stale.conn.Close()
				}
			}(c)
		}
	}
}

type bridgeEnvelope struct {
	Instance string                   `json:"instance"`
	Targets  service.BroadcastTargets `json:"targets"`
	Frame    json.RawMessage          `json:"frame"`
}

func (h *Hub) publishBridge(targets service.BroadcastTargets, frame []byte) {
	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(bridgeEnvelope{
		Instance: h.instanceID,
		Targets:  targets,
		Frame:    frame,
	})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), bridgeChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to publish bridge event", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) subscribeBridge(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, bridgeChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for msg := range ch {
		var env bridgeEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.logger.Warn("Hub", "Malformed bridge payload", map[string]interface{}{"error": err.Error()})
			continue
		}
		// The publishing instance already delivered locally.
		if env.Instance == h.instanceID {
			continue
		}
		h.deliverLocal(env.Targets, env.Frame)
	}
}
