package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/specification"
)

type ChatRoomRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SupportMapper
}

func NewChatRoomRepository(db *gorm.DB) contract.ChatRoomRepository {
	return &ChatRoomRepositoryImpl{
		db:     db,
		mapper: mapper.NewSupportMapper(),
	}
}

func (r *ChatRoomRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Create inserts the room and, when present, its opening message inside
// one transaction. A failed message insert rolls the room back, so a
// half-created conversation never becomes visible.
func (r *ChatRoomRepositoryImpl) Create(ctx context.Context, room *entity.ChatRoom, initial *entity.ChatMessage) error {
	m := r.mapper.ChatRoomToModel(room)
	var msg *model.ChatMessage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if initial == nil {
			return nil
		}
		msg = &model.ChatMessage{
			Id:         initial.Id,
			RoomId:     initial.RoomId,
			SenderId:   initial.SenderId,
			SenderRole: string(initial.SenderRole),
			Body:       initial.Body,
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.ChatRoom{}).
			Where("id = ?", room.Id).
			Update("last_message_at", msg.CreatedAt).Error
	})
	if err != nil {
		return err
	}

	if msg != nil {
		m.LastMessageAt = &msg.CreatedAt
		*initial = *r.mapper.ChatMessageToEntity(msg)
	}
	*room = *r.mapper.ChatRoomToEntity(m)
	return nil
}

func (r *ChatRoomRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error) {
	var m model.ChatRoom
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatRoomToEntity(&m), nil
}

func (r *ChatRoomRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error) {
	var models []*model.ChatRoom
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatRoomsToEntities(models), nil
}

func (r *ChatRoomRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatRoom{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatusIf performs the conditional transition in a single UPDATE so
// two racing pickups cannot both win; the loser sees zero rows affected.
func (r *ChatRoomRepositoryImpl) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to entity.RoomStatus, patch contract.RoomPatch) (bool, error) {
	values := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if patch.AgentId != nil {
		values["agent_id"] = *patch.AgentId
	}

	res := r.db.WithContext(ctx).
		Model(&model.ChatRoom{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
