package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/service"
	"support-chat-be/pkg/identity"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestHub() *Hub {
	return NewHub(nil, nopLogger{})
}

func connect(h *Hub, role identity.Role) *Client {
	c := newClient(h, nil, identity.Identity{UserID: uuid.New(), Role: role})
	h.Register(c)
	return c
}

func drain(c *Client) [][]byte {
	var frames [][]byte
	for {
		select {
		case frame := <-c.send:
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func TestRoomEventReachesSubscribers(t *testing.T) {
	h := newTestHub()
	roomId := uuid.New()

	in := connect(h, identity.RoleCustomer)
	out := connect(h, identity.RoleCustomer)
	h.SubscribeRoom(in, roomId)

	h.RoomEvent(service.BroadcastTargets{RoomID: &roomId}, service.RoomEventAssigned, dto.RoomResponse{Id: roomId})

	assert.Len(t, drain(in), 1)
	assert.Empty(t, drain(out))
}

func TestSubscribeRoomIdempotent(t *testing.T) {
	h := newTestHub()
	roomId := uuid.New()

	c := connect(h, identity.RoleCustomer)
	h.SubscribeRoom(c, roomId)
	h.SubscribeRoom(c, roomId)

	h.MessageEvent(service.BroadcastTargets{RoomID: &roomId}, dto.MessageResponse{Id: uuid.New()})

	assert.Len(t, drain(c), 1)
}

func TestOverlappingTargetsDeliverOnce(t *testing.T) {
	h := newTestHub()
	roomId := uuid.New()

	// The same connection watches the room, its mine feed, and the staff
	// pool; one event matching all three arrives once.
	c := connect(h, identity.RoleAgent)
	h.SubscribeRoom(c, roomId)
	h.SubscribeMine(c)

	h.RoomEvent(service.BroadcastTargets{
		RoomID:    &roomId,
		MineUsers: []uuid.UUID{c.UserID()},
		StaffMine: true,
	}, service.RoomEventClosed, dto.RoomResponse{Id: roomId})

	assert.Len(t, drain(c), 1)
}

func TestStaffMineReceivesWaitingPoolEvents(t *testing.T) {
	h := newTestHub()

	agent := connect(h, identity.RoleAgent)
	customer := connect(h, identity.RoleCustomer)
	h.SubscribeMine(agent)
	h.SubscribeMine(customer)

	h.RoomEvent(service.BroadcastTargets{StaffMine: true}, service.RoomEventCreated, dto.RoomResponse{Id: uuid.New()})

	assert.Len(t, drain(agent), 1)
	assert.Empty(t, drain(customer))
}

func TestMineTargetsByUser(t *testing.T) {
	h := newTestHub()

	c := connect(h, identity.RoleCustomer)
	other := connect(h, identity.RoleCustomer)
	h.SubscribeMine(c)
	h.SubscribeMine(other)

	h.RoomEvent(service.BroadcastTargets{MineUsers: []uuid.UUID{c.UserID()}}, service.RoomEventAssigned, dto.RoomResponse{Id: uuid.New()})

	assert.Len(t, drain(c), 1)
	assert.Empty(t, drain(other))
}

func TestUnregisterStopsDelivery(t *testing.T) {
	h := newTestHub()
	roomId := uuid.New()

	c := connect(h, identity.RoleCustomer)
	h.SubscribeRoom(c, roomId)
	h.SubscribeMine(c)
	h.Unregister(c)

	h.RoomEvent(service.BroadcastTargets{
		RoomID:    &roomId,
		MineUsers: []uuid.UUID{c.UserID()},
	}, service.RoomEventClosed, dto.RoomResponse{Id: roomId})

	h.mu.RLock()
	_, registered := h.clients[c]
	_, roomKept := h.byRoom[roomId]
	_, mineKept := h.mineByUser[c.UserID()]
	h.mu.RUnlock()
	assert.False(t, registered)
	assert.False(t, roomKept)
	assert.False(t, mineKept)

	// Repeated unregister is harmless.
	h.Unregister(c)
}

func TestSubscribeAfterUnregisterIsNoOp(t *testing.T) {
	h := newTestHub()
	roomId := uuid.New()

	c := connect(h, identity.RoleCustomer)
	h.Unregister(c)
	h.SubscribeRoom(c, roomId)
	h.SubscribeMine(c)

	h.mu.RLock()
	_, roomKept := h.byRoom[roomId]
	_, mineKept := h.mineByUser[c.UserID()]
	h.mu.RUnlock()
	assert.False(t, roomKept)
	assert.False(t, mineKept)
}

func TestSlowClientIsDropped(t *testing.T) {
	h := newTestHub()
	roomId := uuid.New()

	c := connect(h, identity.RoleCustomer)
	h.SubscribeRoom(c, roomId)

	for i := 0; i < sendBufferSize; i++ {
		require.True(t, c.trySend([]byte("{}")))
	}

	h.MessageEvent(service.BroadcastTargets{RoomID: &roomId}, dto.MessageResponse{Id: uuid.New()})

	assert.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := h.clients[c]
		return !ok
	}, time.Second, 10*time.Millisecond)
}
