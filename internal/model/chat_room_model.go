package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatRoom struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	AgentId       *uuid.UUID `gorm:"type:uuid;index"`
	Status        string     `gorm:"type:varchar(16);not null;index"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
	LastMessageAt *time.Time `gorm:"index"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}
