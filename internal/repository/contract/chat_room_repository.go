package contract

import (
	"context"

	"github.com/google/uuid"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/specification"
)

// RoomPatch carries the fields UpdateStatusIf may change alongside the
// status transition.
type RoomPatch struct {
	AgentId *uuid.UUID
}

type ChatRoomRepository interface {
	// Create persists the room and, when initial is non-nil, its first
	// message in one transaction. Either both rows land or neither does.
	Create(ctx context.Context, room *entity.ChatRoom, initial *entity.ChatMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateStatusIf transitions the room from `from` to `to` atomically.
	// It reports false (and no error) when the room was not in `from`
	// anymore, which the caller maps to Conflict/InvalidTransition.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to entity.RoomStatus, patch RoomPatch) (bool, error)
}
