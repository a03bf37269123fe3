// Package lifecycle holds the room state machine: pure transition guards
// with no I/O. The repository enforces the same transitions atomically at
// the store; these guards reject bad requests before any write happens and
// produce the precise error kind for the caller.
package lifecycle

import (
	"github.com/google/uuid"

	"support-chat-be/internal/entity"
	"support-chat-be/pkg/apperr"
	"support-chat-be/pkg/identity"
)

// CanPickup checks the waiting -> assigned transition. Only staff may pick
// up, and only from waiting.
func CanPickup(room *entity.ChatRoom, caller identity.Identity) error {
	if !caller.IsStaff() {
		return apperr.New(apperr.KindForbidden, "only staff can pick up a room")
	}
	switch room.Status {
	case entity.RoomStatusWaiting:
		return nil
	case entity.RoomStatusAssigned:
		return apperr.New(apperr.KindInvalidTransition, "room is already assigned")
	case entity.RoomStatusClosed:
		return apperr.New(apperr.KindRoomClosed, "room is closed")
	}
	return apperr.Newf(apperr.KindInvalidTransition, "unknown room status %q", room.Status)
}

// CanSend checks who may post into the room in its current state. While
// waiting only the customer may write (there is no agent to reply yet);
// once assigned both participants may write.
func CanSend(room *entity.ChatRoom, caller identity.Identity) error {
	switch room.Status {
	case entity.RoomStatusClosed:
		return apperr.New(apperr.KindRoomClosed, "room is closed")
	case entity.RoomStatusWaiting:
		if room.CustomerId != caller.UserID {
			return apperr.New(apperr.KindForbidden, "room has no agent yet; only the customer can send")
		}
		return nil
	case entity.RoomStatusAssigned:
		if !room.IsParticipant(caller.UserID) {
			return apperr.New(apperr.KindForbidden, "sender is not a participant of this room")
		}
		return nil
	}
	return apperr.Newf(apperr.KindInvalidTransition, "unknown room status %q", room.Status)
}

// CanClose checks the * -> closed transition. A customer may abandon an
// unassigned request; any staff may close a waiting room; an assigned room
// is closed only by its participants.
func CanClose(room *entity.ChatRoom, caller identity.Identity) error {
	switch room.Status {
	case entity.RoomStatusClosed:
		return apperr.New(apperr.KindRoomClosed, "room is already closed")
	case entity.RoomStatusWaiting:
		if room.CustomerId == caller.UserID || caller.IsStaff() {
			return nil
		}
		return apperr.New(apperr.KindForbidden, "not allowed to close this room")
	case entity.RoomStatusAssigned:
		if room.IsParticipant(caller.UserID) {
			return nil
		}
		return apperr.New(apperr.KindForbidden, "only the room's participants can close it")
	}
	return apperr.Newf(apperr.KindInvalidTransition, "unknown room status %q", room.Status)
}

// SenderRoleFor derives the immutable sender role recorded on a message.
func SenderRoleFor(room *entity.ChatRoom, sender uuid.UUID) entity.SenderRole {
	if room.CustomerId == sender {
		return entity.SenderRoleCustomer
	}
	return entity.SenderRoleAgent
}
