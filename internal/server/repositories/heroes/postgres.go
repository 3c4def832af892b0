package heroes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/herostore/internal/common"
	"github.com/dmitrijs2005/herostore/internal/dbx"
	"github.com/dmitrijs2005/herostore/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, image *models.HeroImage) (*models.HeroImage, error) {

	query :=
		`INSERT INTO hero_images (user_id, image_url, active)
         VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, image.UserID, image.ImageURL, image.Active).Scan(&image.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return image, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.HeroImage, error) {
	query :=
		`SELECT id, user_id, image_url, active FROM hero_images
		 WHERE user_id = $1
		 ORDER BY id
		 `
	return r.list(ctx, query, userID)
}

// LockByUser returns the owner's images and holds row locks on them until
// the surrounding transaction ends, serialising concurrent activations.
func (r *PostgresRepository) LockByUser(ctx context.Context, userID int64) ([]models.HeroImage, error) {
	query :=
		`SELECT id, user_id, image_url, active FROM hero_images
		 WHERE user_id = $1
		 ORDER BY id
		 FOR UPDATE
		 `
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, userID int64) ([]models.HeroImage, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.HeroImage, 0)
	for rows.Next() {
		var img models.HeroImage
		if err := rows.Scan(&img.ID, &img.UserID, &img.ImageURL, &img.Active); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id int64) (*models.HeroImage, error) {
	query :=
		`SELECT id, user_id, image_url, active FROM hero_images
		 WHERE id = $1 AND user_id = $2
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) GetActive(ctx context.Context, userID int64) (*models.HeroImage, error) {
	query :=
		`SELECT id, user_id, image_url, active FROM hero_images
		 WHERE user_id = $1 AND active
		 ORDER BY id
		 LIMIT 1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) UpdateImageURL(ctx context.Context, userID, id int64, url string) (*models.HeroImage, error) {
	query :=
		`UPDATE hero_images SET image_url = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, image_url, active
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID, url))
}

func (r *PostgresRepository) SetActive(ctx context.Context, userID, id int64) (*models.HeroImage, error) {
	query :=
		`UPDATE hero_images SET active = TRUE
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, image_url, active
		 `
	img, err := r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil && dbx.IsUniqueViolation(err) {
		return nil, common.ErrorAlreadyExists
	}
	return img, err
}

func (r *PostgresRepository) ClearActive(ctx context.Context, userID int64) error {
	query :=
		`UPDATE hero_images SET active = FALSE
		 WHERE user_id = $1 AND active
		 `
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {
	query :=
		`DELETE FROM hero_images
		 WHERE id = $1 AND user_id = $2
		 `
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.HeroImage, error) {
	img := &models.HeroImage{}
	if err := row.Scan(&img.ID, &img.UserID, &img.ImageURL, &img.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}
