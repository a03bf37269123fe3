package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/implementation"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/pkg/database"
)

func TestChatRepositories(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	require.NoError(t, gormDB.AutoMigrate(&model.ChatRoom{}, &model.ChatMessage{}))

	rooms := implementation.NewChatRoomRepository(gormDB)
	messages := implementation.NewChatMessageRepository(gormDB)
	ctx := context.Background()

	customerId := uuid.New()
	agentId := uuid.New()

	room := &entity.ChatRoom{
		Id:         uuid.New(),
		CustomerId: customerId,
		Status:     entity.RoomStatusWaiting,
	}
	require.NoError(t, rooms.Create(ctx, room, nil))
	t.Cleanup(func() {
		gormDB.Exec("DELETE FROM chat_messages WHERE room_id = ?", room.Id)
		gormDB.Exec("DELETE FROM chat_rooms WHERE id = ?", room.Id)
	})

	t.Run("Create with opening message lands both rows", func(t *testing.T) {
		opened := &entity.ChatRoom{
			Id:         uuid.New(),
			CustomerId: customerId,
			Status:     entity.RoomStatusWaiting,
		}
		first := &entity.ChatMessage{
			Id:         uuid.New(),
			RoomId:     opened.Id,
			SenderId:   customerId,
			SenderRole: entity.SenderRoleCustomer,
			Body:       "opening question",
		}
		require.NoError(t, rooms.Create(ctx, opened, first))
		t.Cleanup(func() {
			gormDB.Exec("DELETE FROM chat_messages WHERE room_id = ?", opened.Id)
			gormDB.Exec("DELETE FROM chat_rooms WHERE id = ?", opened.Id)
		})

		assert.NotNil(t, opened.LastMessageAt)
		assert.NotZero(t, first.Seq)

		items, err := messages.FindAll(ctx, specification.ByRoomID{RoomID: opened.Id})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "opening question", items[0].Body)
	})

	t.Run("FindOne returns nil for unknown id", func(t *testing.T) {
		got, err := rooms.FindOne(ctx, specification.ByID{ID: uuid.New()})
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Conditional assignment succeeds once", func(t *testing.T) {
		ok, err := rooms.UpdateStatusIf(ctx, room.Id, entity.RoomStatusWaiting, entity.RoomStatusAssigned, contract.RoomPatch{AgentId: &agentId})
		require.NoError(t, err)
		assert.True(t, ok)

		// The room left waiting; the same transition matches nothing now.
		ok, err = rooms.UpdateStatusIf(ctx, room.Id, entity.RoomStatusWaiting, entity.RoomStatusAssigned, contract.RoomPatch{AgentId: &agentId})
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := rooms.FindOne(ctx, specification.ByID{ID: room.Id})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entity.RoomStatusAssigned, got.Status)
		require.NotNil(t, got.AgentId)
		assert.Equal(t, agentId, *got.AgentId)
	})

	t.Run("Append bumps room activity and keeps order", func(t *testing.T) {
		for _, body := range []string{"first", "second", "third"} {
			msg := &entity.ChatMessage{
				Id:         uuid.New(),
				RoomId:     room.Id,
				SenderId:   customerId,
				SenderRole: entity.SenderRoleCustomer,
				Body:       body,
			}
			require.NoError(t, messages.Append(ctx, msg))
		}

		got, err := rooms.FindOne(ctx, specification.ByID{ID: room.Id})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.NotNil(t, got.LastMessageAt)

		items, err := messages.FindAll(ctx,
			specification.ByRoomID{RoomID: room.Id},
			specification.OrderBySeq{},
		)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "first", items[0].Body)
		assert.Equal(t, "third", items[2].Body)

		count, err := messages.Count(ctx, specification.ByRoomID{RoomID: room.Id})
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
	})

	t.Run("Participant filter matches customer and agent", func(t *testing.T) {
		found, err := rooms.FindAll(ctx, specification.ByParticipant{UserID: agentId})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, room.Id, found[0].Id)

		none, err := rooms.FindAll(ctx, specification.ByParticipant{UserID: uuid.New()})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
