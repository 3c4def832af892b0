// Package services contains server-side business logic. This file implements
// UserService, which handles registration, email verification, login and
// resolving the caller behind an access token.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/herostore/internal/common"
	"github.com/dmitrijs2005/herostore/internal/logging"
	"github.com/dmitrijs2005/herostore/internal/server/auth"
	"github.com/dmitrijs2005/herostore/internal/server/config"
	"github.com/dmitrijs2005/herostore/internal/server/mailer"
	"github.com/dmitrijs2005/herostore/internal/server/models"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/repomanager"
	"github.com/golang-jwt/jwt/v5"
)

// UserService provides account operations:
// - Register / VerifyEmail / ResendVerification: the email verification flow
// - Authenticate / Login: credential checks and access token issuance
// - CurrentUser: resolves the user behind a bearer token
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	mailer                      mailer.Sender
	log                         logging.Logger
	jwtSecret                   []byte
	signingMethod               jwt.SigningMethod
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
// It fails when the configured signing algorithm is not an HMAC one.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sender mailer.Sender, cfg *config.Config, log logging.Logger) (*UserService, error) {
	method, err := auth.SigningMethod(cfg.SigningAlgorithm)
	if err != nil {
		return nil, err
	}
	return &UserService{
		db:                          db,
		repomanager:                 m,
		mailer:                      sender,
		log:                         log.With("module", "users"),
		jwtSecret:                   []byte(cfg.SecretKey),
		signingMethod:               method,
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}, nil
}

// Register creates an unverified user and mails the verification code.
// A failed email does not undo the registration; the code can be resent.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if err := s.ensureFree(func() error { _, err := repo.GetByUsername(ctx, username); return err }, ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(func() error { _, err := repo.GetByEmail(ctx, email); return err }, ErrEmailTaken); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	code, err := common.GenerateDigitCode(common.VerificationCodeLength)
	if err != nil {
		return nil, fmt.Errorf("error generating verification code: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		Username:              username,
		Email:                 email,
		PasswordHash:          hash,
		EmailVerificationCode: &code,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	s.sendCode(ctx, user.Email, code)

	return user, nil
}

func (s *UserService) ensureFree(lookup func() error, taken error) error {
	err := lookup()
	switch {
	case err == nil:
		return taken
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return err
	}
}

func (s *UserService) sendCode(ctx context.Context, email, code string) {
	if err := s.mailer.SendVerificationCode(email, code); err != nil {
		s.log.Warn(ctx, "verification email not sent", "email", email, "error", err)
	}
}

// VerifyEmail marks the user verified when code matches the stored one.
// The stored code is cleared on success and cannot be used again.
func (s *UserService) VerifyEmail(ctx context.Context, username, code string) error {
	repo := s.repomanager.Users(s.db)

	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}

	if user.EmailVerificationCode == nil || !s.checkCode(*user.EmailVerificationCode, code) {
		return ErrInvalidCode
	}

	if err := repo.MarkEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("error verifying email: %w", err)
	}

	s.log.Info(ctx, "email verified", "user_id", user.ID)
	return nil
}

// ResendVerification issues a fresh code to a user that is not verified yet.
func (s *UserService) ResendVerification(ctx context.Context, username string) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	code, err := common.GenerateDigitCode(common.VerificationCodeLength)
	if err != nil {
		return fmt.Errorf("error generating verification code: %w", err)
	}
	if err := s.repomanager.Users(s.db).SetVerificationCode(ctx, user.ID, code); err != nil {
		return fmt.Errorf("error storing verification code: %w", err)
	}

	s.sendCode(ctx, user.Email, code)
	return nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords yield the same common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// Login authenticates the user and returns a signed access token. Users
// that have not verified their email are refused with ErrEmailNotVerified.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !user.IsEmailVerified {
		return "", ErrEmailNotVerified
	}

	token, err := auth.GenerateToken(user.Username, s.jwtSecret, s.signingMethod, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return token, nil
}

// CurrentUser resolves the user a bearer token was issued to. Any token
// problem or a subject without a matching user is common.ErrorUnauthorized.
func (s *UserService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	username, err := auth.GetSubjectFromToken(token, s.jwtSecret, s.signingMethod)
	if err != nil {
		s.log.Debug(ctx, "token rejected", "error", err)
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// --- helpers below ---

func (s *UserService) findUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) checkCode(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
