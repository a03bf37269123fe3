package entity

import (
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusAssigned RoomStatus = "assigned"
	RoomStatusClosed   RoomStatus = "closed"
)

// ChatRoom is a single customer-support conversation thread.
// AgentId is nil while the room waits for pickup and is set exactly once.
type ChatRoom struct {
	Id            uuid.UUID
	CustomerId    uuid.UUID
	AgentId       *uuid.UUID
	Status        RoomStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastMessageAt *time.Time
}

// IsParticipant reports whether userId is the room's customer or its
// assigned agent.
func (r *ChatRoom) IsParticipant(userId uuid.UUID) bool {
	if r.CustomerId == userId {
		return true
	}
	return r.AgentId != nil && *r.AgentId == userId
}
