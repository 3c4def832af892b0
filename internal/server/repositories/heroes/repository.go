package heroes

import (
	"context"

	"github.com/dmitrijs2005/herostore/internal/server/models"
)

// Repository persists hero images. Every lookup is scoped by owner so an
// image belonging to someone else is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, image *models.HeroImage) (*models.HeroImage, error)
	ListByUser(ctx context.Context, userID int64) ([]models.HeroImage, error)
	GetByID(ctx context.Context, userID, id int64) (*models.HeroImage, error)
	LockByUser(ctx context.Context, userID int64) ([]models.HeroImage, error)
	UpdateImageURL(ctx context.Context, userID, id int64, url string) (*models.HeroImage, error)
	Delete(ctx context.Context, userID, id int64) error
	ClearActive(ctx context.Context, userID int64) error
	SetActive(ctx context.Context, userID, id int64) (*models.HeroImage, error)
	GetActive(ctx context.Context, userID int64) (*models.HeroImage, error)
}
