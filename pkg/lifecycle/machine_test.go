package lifecycle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"support-chat-be/internal/entity"
	"support-chat-be/pkg/apperr"
	"support-chat-be/pkg/identity"
)

var (
	customerId = uuid.New()
	agentId    = uuid.New()
	strangerId = uuid.New()
)

func room(status entity.RoomStatus, withAgent bool) *entity.ChatRoom {
	r := &entity.ChatRoom{
		Id:         uuid.New(),
		CustomerId: customerId,
		Status:     status,
	}
	if withAgent {
		a := agentId
		r.AgentId = &a
	}
	return r
}

func TestCanPickup(t *testing.T) {
	tests := []struct {
		name     string
		room     *entity.ChatRoom
		caller   identity.Identity
		wantKind apperr.Kind
	}{
		{
			name:   "staff picks up waiting room",
			room:   room(entity.RoomStatusWaiting, false),
			caller: identity.Identity{UserID: agentId, Role: identity.RoleAgent},
		},
		{
			name:     "customer cannot pick up",
			room:     room(entity.RoomStatusWaiting, false),
			caller:   identity.Identity{UserID: customerId, Role: identity.RoleCustomer},
			wantKind: apperr.KindForbidden,
		},
		{
			name:     "already assigned",
			room:     room(entity.RoomStatusAssigned, true),
			caller:   identity.Identity{UserID: strangerId, Role: identity.RoleAgent},
			wantKind: apperr.KindInvalidTransition,
		},
		{
			name:     "closed room",
			room:     room(entity.RoomStatusClosed, true),
			caller:   identity.Identity{UserID: agentId, Role: identity.RoleAgent},
			wantKind: apperr.KindRoomClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanPickup(tt.room, tt.caller)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestCanSend(t *testing.T) {
	tests := []struct {
		name     string
		room     *entity.ChatRoom
		caller   identity.Identity
		wantKind apperr.Kind
	}{
		{
			name:   "customer sends while waiting",
			room:   room(entity.RoomStatusWaiting, false),
			caller: identity.Identity{UserID: customerId, Role: identity.RoleCustomer},
		},
		{
			name:     "staff cannot send before pickup",
			room:     room(entity.RoomStatusWaiting, false),
			caller:   identity.Identity{UserID: agentId, Role: identity.RoleAgent},
			wantKind: apperr.KindForbidden,
		},
		{
			name:   "assigned agent sends",
			room:   room(entity.RoomStatusAssigned, true),
			caller: identity.Identity{UserID: agentId, Role: identity.RoleAgent},
		},
		{
			name:   "customer sends in assigned room",
			room:   room(entity.RoomStatusAssigned, true),
			caller: identity.Identity{UserID: customerId, Role: identity.RoleCustomer},
		},
		{
			name:     "other staff cannot send into assigned room",
			room:     room(entity.RoomStatusAssigned, true),
			caller:   identity.Identity{UserID: strangerId, Role: identity.RoleAgent},
			wantKind: apperr.KindForbidden,
		},
		{
			name:     "closed room rejects send",
			room:     room(entity.RoomStatusClosed, true),
			caller:   identity.Identity{UserID: customerId, Role: identity.RoleCustomer},
			wantKind: apperr.KindRoomClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanSend(tt.room, tt.caller)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestCanClose(t *testing.T) {
	tests := []struct {
		name     string
		room     *entity.ChatRoom
		caller   identity.Identity
		wantKind apperr.Kind
	}{
		{
			name:   "customer abandons waiting room",
			room:   room(entity.RoomStatusWaiting, false),
			caller: identity.Identity{UserID: customerId, Role: identity.RoleCustomer},
		},
		{
			name:   "any staff closes waiting room",
			room:   room(entity.RoomStatusWaiting, false),
			caller: identity.Identity{UserID: strangerId, Role: identity.RoleAgent},
		},
		{
			name:     "stranger cannot close waiting room",
			room:     room(entity.RoomStatusWaiting, false),
			caller:   identity.Identity{UserID: strangerId, Role: identity.RoleCustomer},
			wantKind: apperr.KindForbidden,
		},
		{
			name:   "assigned agent closes",
			room:   room(entity.RoomStatusAssigned, true),
			caller: identity.Identity{UserID: agentId, Role: identity.RoleAgent},
		},
		{
			name:   "customer closes assigned room",
			room:   room(entity.RoomStatusAssigned, true),
			caller: identity.Identity{UserID: customerId, Role: identity.RoleCustomer},
		},
		{
			name:     "other staff cannot close assigned room",
			room:     room(entity.RoomStatusAssigned, true),
			caller:   identity.Identity{UserID: strangerId, Role: identity.RoleAgent},
			wantKind: apperr.KindForbidden,
		},
		{
			name:     "closed is terminal",
			room:     room(entity.RoomStatusClosed, true),
			caller:   identity.Identity{UserID: agentId, Role: identity.RoleAgent},
			wantKind: apperr.KindRoomClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanClose(tt.room, tt.caller)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestSenderRoleFor(t *testing.T) {
	r := room(entity.RoomStatusAssigned, true)
	assert.Equal(t, entity.SenderRoleCustomer, SenderRoleFor(r, customerId))
	assert.Equal(t, entity.SenderRoleAgent, SenderRoleFor(r, agentId))
}
