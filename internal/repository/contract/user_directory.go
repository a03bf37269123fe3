package contract

import (
	"context"

	"github.com/google/uuid"
)

// UserDirectory is a read-only view into the shop's users table, used to
// resolve a customer's email for the close-transcript mail. User CRUD
// itself lives outside this subsystem.
type UserDirectory interface {
	EmailOf(ctx context.Context, userId uuid.UUID) (string, error)
}
