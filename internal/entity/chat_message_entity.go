package entity

import (
	"time"

	"github.com/google/uuid"
)

type SenderRole string

const (
	SenderRoleCustomer SenderRole = "customer"
	SenderRoleAgent    SenderRole = "agent"
)

// ChatMessage is immutable once created. Seq is a monotonic insertion
// counter used as the ordering tiebreaker when CreatedAt collides.
type ChatMessage struct {
	Id         uuid.UUID
	RoomId     uuid.UUID
	SenderId   uuid.UUID
	SenderRole SenderRole
	Body       string
	Seq        int64
	CreatedAt  time.Time
}
