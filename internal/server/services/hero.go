package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/herostore/internal/common"
	"github.com/dmitrijs2005/herostore/internal/dbx"
	"github.com/dmitrijs2005/herostore/internal/logging"
	"github.com/dmitrijs2005/herostore/internal/server/models"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/herostore/internal/server/storage"
)

// HeroFolder is the media folder hero images are stored under.
const HeroFolder = "hero"

// MaxUploadSize is the largest accepted image, in bytes.
const MaxUploadSize = 50 * 1024 * 1024

var allowedExtensions = []string{"png", "jpg", "jpeg"}

// Declared MIME types accepted for upload. Wider than allowedExtensions,
// which stays the strict check.
var allowedMIMETypes = []string{
	"text/plain",
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/gif",
}

// Upload is an image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ValidateUpload checks extension, size, declared MIME type and emptiness,
// in that order.
func ValidateUpload(f Upload) error {
	i := strings.LastIndexByte(f.Filename, '.')
	if i < 0 || !slices.Contains(allowedExtensions, strings.ToLower(f.Filename[i+1:])) {
		return ErrFileTypeNotAllowed
	}
	if len(f.Content) > MaxUploadSize {
		return ErrFileTooLarge
	}
	if !slices.Contains(allowedMIMETypes, f.ContentType) {
		return ErrInvalidFileContent
	}
	if len(f.Content) == 0 {
		return ErrEmptyFile
	}
	return nil
}

// HeroService manages the hero images of a user. Object storage is never
// called while a database transaction is open.
type HeroService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.Gateway
	log         logging.Logger
}

func NewHeroService(db *sql.DB, m repomanager.RepositoryManager, gw storage.Gateway, log logging.Logger) *HeroService {
	return &HeroService{
		db:          db,
		repomanager: m,
		storage:     gw,
		log:         log.With("module", "heroes"),
	}
}

// Upload stores the file and records it as an inactive image of userID.
// If the row cannot be written the stored object is removed again.
func (s *HeroService) Upload(ctx context.Context, userID int64, f Upload) (*models.HeroImage, error) {
	if err := ValidateUpload(f); err != nil {
		return nil, err
	}

	url, err := s.put(ctx, f)
	if err != nil {
		return nil, err
	}

	img, err := s.repomanager.Heroes(s.db).Create(ctx, &models.HeroImage{UserID: userID, ImageURL: url})
	if err != nil {
		s.removeObject(ctx, url)
		return nil, fmt.Errorf("error saving image: %w", err)
	}

	s.log.Info(ctx, "image uploaded", "user_id", userID, "image_id", img.ID)
	return img, nil
}

// List returns all images of userID ordered by id.
func (s *HeroService) List(ctx context.Context, userID int64) ([]models.HeroImage, error) {
	return s.repomanager.Heroes(s.db).ListByUser(ctx, userID)
}

func (s *HeroService) Get(ctx context.Context, userID, id int64) (*models.HeroImage, error) {
	img, err := s.repomanager.Heroes(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrImageNotFound)
	}
	return img, nil
}

// Update replaces the content of an image. The id and active flag are kept;
// the previous object is deleted on a best-effort basis.
func (s *HeroService) Update(ctx context.Context, userID, id int64, f Upload) (*models.HeroImage, error) {
	repo := s.repomanager.Heroes(s.db)

	img, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrImageNotFound)
	}
	if err := ValidateUpload(f); err != nil {
		return nil, err
	}

	s.removeObject(ctx, img.ImageURL)

	url, err := s.put(ctx, f)
	if err != nil {
		return nil, err
	}

	updated, err := repo.UpdateImageURL(ctx, userID, id, url)
	if err != nil {
		s.removeObject(ctx, url)
		return nil, notFoundAs(err, ErrImageNotFound)
	}
	return updated, nil
}

// Delete removes the stored object (best effort) and then the row, and
// returns the image as it was before deletion.
func (s *HeroService) Delete(ctx context.Context, userID, id int64) (*models.HeroImage, error) {
	repo := s.repomanager.Heroes(s.db)

	img, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrImageNotFound)
	}

	s.removeObject(ctx, img.ImageURL)

	if err := repo.Delete(ctx, userID, id); err != nil {
		return nil, notFoundAs(err, ErrImageNotFound)
	}
	return img, nil
}

// Activate makes id the only active image of userID. The owner's rows are
// locked for the duration of the transaction, so concurrent activations
// for the same owner run one after another.
func (s *HeroService) Activate(ctx context.Context, userID, id int64) (*models.HeroImage, error) {
	var activated *models.HeroImage

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Heroes(tx)

		images, err := repo.LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(images, func(img models.HeroImage) bool { return img.ID == id }) {
			return ErrHeroNotFound
		}

		if err := repo.ClearActive(ctx, userID); err != nil {
			return err
		}
		activated, err = repo.SetActive(ctx, userID, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrActivateRaced
		}
		return nil, notFoundAs(err, ErrHeroNotFound)
	}

	s.log.Info(ctx, "image activated", "user_id", userID, "image_id", id)
	return activated, nil
}

func (s *HeroService) GetActive(ctx context.Context, userID int64) (*models.HeroImage, error) {
	img, err := s.repomanager.Heroes(s.db).GetActive(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoActiveImage)
	}
	return img, nil
}

// --- helpers below ---

func (s *HeroService) put(ctx context.Context, f Upload) (string, error) {
	url, err := s.storage.Upload(ctx, HeroFolder, f.Filename, f.ContentType, f.Content)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateObject) {
			return "", ErrDuplicateFile
		}
		return "", fmt.Errorf("error storing image: %w", err)
	}
	return url, nil
}

func (s *HeroService) removeObject(ctx context.Context, url string) {
	if err := s.storage.Delete(ctx, HeroFolder, url); err != nil {
		s.log.Warn(ctx, "error deleting file from storage", "url", url, "error", err)
	}
}

// notFoundAs replaces a generic not-found with the operation specific one.
func notFoundAs(err, specific error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return specific
	}
	return err
}
