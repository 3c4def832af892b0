package users

import (
	"context"

	"github.com/dmitrijs2005/herostore/internal/server/models"
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerificationCode(ctx context.Context, userID int64, code string) error
	MarkEmailVerified(ctx context.Context, userID int64) error
}
