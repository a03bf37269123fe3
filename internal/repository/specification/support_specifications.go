package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByRoomID filters messages belonging to a room.
type ByRoomID struct {
	RoomID uuid.UUID
}

func (s ByRoomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_id = ?", s.RoomID)
}

// ByStatus filters rooms by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByParticipant matches rooms where the user is the customer or the
// assigned agent.
type ByParticipant struct {
	UserID uuid.UUID
}

func (s ByParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("customer_id = ? OR agent_id = ?", s.UserID, s.UserID)
}

// OrderByActivity sorts rooms by most recent activity: last message first,
// falling back to updated_at then created_at.
type OrderByActivity struct{}

func (s OrderByActivity) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("COALESCE(last_message_at, updated_at, created_at) DESC")
}

// OrderBySeq sorts messages in persisted order, oldest first.
type OrderBySeq struct{}

func (s OrderBySeq) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, seq ASC")
}
