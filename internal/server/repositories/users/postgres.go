package users

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

const selectUser = `SELECT id, username, email, password_hash, registration_date, is_email_verified, email_verification_code
		 FROM users`

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash, is_email_verified, email_verification_code)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, registration_date
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.IsEmailVerified, user.EmailVerificationCode).
		Scan(&user.ID, &user.RegistrationDate)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`
		 WHERE username = $1
		 `, username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`
		 WHERE email = $1
		 `, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.RegistrationDate, &user.IsEmailVerified, &user.EmailVerificationCode)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) SetVerificationCode(ctx context.Context, userID int64, code string) error {
	query :=
		`UPDATE users SET email_verification_code = $2
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, userID, code)
}

// MarkEmailVerified flags the account as verified and drops the stored code
// so it cannot be replayed.
func (r *PostgresRepository) MarkEmailVerified(ctx context.Context, userID int64) error {
	query :=
		`UPDATE users SET is_email_verified = TRUE, email_verification_code = NULL
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, userID)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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
