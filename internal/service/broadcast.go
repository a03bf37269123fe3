package service

import (
	"github.com/google/uuid"

	"support-chat-be/internal/dto"
)

// Room lifecycle event types pushed to subscribers.
const (
	RoomEventCreated  = "created"
	RoomEventAssigned = "assigned"
	RoomEventClosed   = "closed"
)

// BroadcastTargets names the connections an event is for. The broadcaster
// resolves the union of the three sets and delivers exactly once per
// connection, even when a connection appears in more than one set.
type BroadcastTargets struct {
	RoomID    *uuid.UUID  `json:"room_id,omitempty"`
	MineUsers []uuid.UUID `json:"mine_users,omitempty"`
	StaffMine bool        `json:"staff_mine,omitempty"`
}

// EventBroadcaster is implemented by the websocket hub. Delivery is
// fire-and-forget: failures to individual connections are never surfaced
// back to the RPC that triggered the broadcast.
type EventBroadcaster interface {
	RoomEvent(targets BroadcastTargets, eventType string, room dto.RoomResponse)
	MessageEvent(targets BroadcastTargets, message dto.MessageResponse)
}
