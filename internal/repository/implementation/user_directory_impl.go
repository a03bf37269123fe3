package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"support-chat-be/internal/repository/contract"
	"support-chat-be/pkg/apperr"
)

type UserDirectoryImpl struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) contract.UserDirectory {
	return &UserDirectoryImpl{db: db}
}

func (r *UserDirectoryImpl) EmailOf(ctx context.Context, userId uuid.UUID) (string, error) {
	var email string
	err := r.db.WithContext(ctx).
		Table("users").
		Select("email").
		Where("id = ?", userId).
		Scan(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.New(apperr.KindNotFound, "user not found")
		}
		return "", err
	}
	if email == "" {
		return "", apperr.New(apperr.KindNotFound, "user not found")
	}
	return email, nil
}
