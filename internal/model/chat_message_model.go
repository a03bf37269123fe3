package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoomId     uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_messages_room_seq,priority:1"`
	SenderId   uuid.UUID `gorm:"type:uuid;not null"`
	SenderRole string    `gorm:"type:varchar(16);not null"`
	Body       string    `gorm:"type:text;not null"`
	// Seq is a bigserial; it breaks ordering ties when two messages land in
	// the same microsecond.
	Seq       int64     `gorm:"autoIncrement;index:idx_chat_messages_room_seq,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
