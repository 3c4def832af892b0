package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/herostore/internal/common"
)

// Domain errors. Each wraps the common sentinel that decides its class, so
// callers may match either the specific or the generic value.
var (
	ErrUsernameTaken    = fmt.Errorf("username already registered: %w", common.ErrorAlreadyExists)
	ErrEmailTaken       = fmt.Errorf("email already registered: %w", common.ErrorAlreadyExists)
	ErrEmailNotVerified = fmt.Errorf("email not verified: %w", common.ErrorUnauthorized)
	ErrUserNotFound     = fmt.Errorf("user not found: %w", common.ErrorNotFound)
	ErrInvalidCode      = errors.New("invalid verification code")
	ErrAlreadyVerified  = errors.New("email already verified")

	ErrFileTypeNotAllowed = fmt.Errorf("file type not allowed: %w", common.ErrorInvalidInput)
	ErrFileTooLarge       = fmt.Errorf("file too large: %w", common.ErrorInvalidInput)
	ErrInvalidFileContent = fmt.Errorf("invalid file content: %w", common.ErrorInvalidInput)
	ErrEmptyFile          = fmt.Errorf("file content is empty: %w", common.ErrorInvalidInput)
	ErrDuplicateFile      = errors.New("duplicate file")

	ErrImageNotFound = fmt.Errorf("image not found: %w", common.ErrorNotFound)
	ErrHeroNotFound  = fmt.Errorf("hero not found: %w", common.ErrorNotFound)
	ErrNoActiveImage = fmt.Errorf("no active images found: %w", common.ErrorNotFound)
	ErrActivateRaced = fmt.Errorf("concurrent activation: %w", common.ErrorInternal)
)
