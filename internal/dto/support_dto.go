package dto

import (
	"time"

	"github.com/google/uuid"

	"support-chat-be/internal/entity"
)

type CreateRoomRequest struct {
	InitialMessage string `json:"initial_message"`
}

type PickupRoomRequest struct {
	RoomId uuid.UUID `json:"room_id" validate:"required"`
}

type SendMessageRequest struct {
	RoomId uuid.UUID `json:"room_id" validate:"required"`
	Body   string    `json:"body" validate:"required"`
}

type CloseRoomRequest struct {
	RoomId uuid.UUID `json:"room_id" validate:"required"`
}

type SubscribeRequest struct {
	RoomId uuid.UUID `json:"room_id" validate:"required"`
}

type ListRoomsRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=waiting assigned closed"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

type ListMineRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type HistoryRequest struct {
	RoomId uuid.UUID `json:"room_id" validate:"required"`
	Page   int       `json:"page"`
	Limit  int       `json:"limit"`
}

type RoomResponse struct {
	Id            uuid.UUID  `json:"id"`
	CustomerId    uuid.UUID  `json:"customer_id"`
	AgentId       *uuid.UUID `json:"agent_id,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

type MessageResponse struct {
	Id         uuid.UUID `json:"id"`
	RoomId     uuid.UUID `json:"room_id"`
	SenderId   uuid.UUID `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type PagedRoomsResponse struct {
	Items []RoomResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type PagedMessagesResponse struct {
	Items []MessageResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func NewRoomResponse(room *entity.ChatRoom) RoomResponse {
	return RoomResponse{
		Id:            room.Id,
		CustomerId:    room.CustomerId,
		AgentId:       room.AgentId,
		Status:        string(room.Status),
		CreatedAt:     room.CreatedAt,
		UpdatedAt:     room.UpdatedAt,
		LastMessageAt: room.LastMessageAt,
	}
}

func NewMessageResponse(msg *entity.ChatMessage) MessageResponse {
	return MessageResponse{
		Id:         msg.Id,
		RoomId:     msg.RoomId,
		SenderId:   msg.SenderId,
		SenderRole: string(msg.SenderRole),
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
}
