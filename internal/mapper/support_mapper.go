package mapper

import (
	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
)

type SupportMapper struct{}

func NewSupportMapper() *SupportMapper {
	return &SupportMapper{}
}

func (m *SupportMapper) ChatRoomToEntity(r *model.ChatRoom) *entity.ChatRoom {
	if r == nil {
		return nil
	}

	return &entity.ChatRoom{
		Id:            r.Id,
		CustomerId:    r.CustomerId,
		AgentId:       r.AgentId,
		Status:        entity.RoomStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		LastMessageAt: r.LastMessageAt,
	}
}

func (m *SupportMapper) ChatRoomToModel(r *entity.ChatRoom) *model.ChatRoom {
	if r == nil {
		return nil
	}

	return &model.ChatRoom{
		Id:            r.Id,
		CustomerId:    r.CustomerId,
		AgentId:       r.AgentId,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		LastMessageAt: r.LastMessageAt,
	}
}

func (m *SupportMapper) ChatRoomsToEntities(models []*model.ChatRoom) []*entity.ChatRoom {
	entities := make([]*entity.ChatRoom, len(models))
	for i, r := range models {
		entities[i] = m.ChatRoomToEntity(r)
	}
	return entities
}

func (m *SupportMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:         msg.Id,
		RoomId:     msg.RoomId,
		SenderId:   msg.SenderId,
		SenderRole: entity.SenderRole(msg.SenderRole),
		Body:       msg.Body,
		Seq:        msg.Seq,
		CreatedAt:  msg.CreatedAt,
	}
}

func (m *SupportMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
