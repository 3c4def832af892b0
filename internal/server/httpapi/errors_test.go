package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/herostore/internal/common"
	"github.com/dmitrijs2005/herostore/internal/server/models"
	"github.com/dmitrijs2005/herostore/internal/server/services"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		detail string
	}{
		{services.ErrEmailNotVerified, http.StatusUnauthorized, "Email not verified"},
		{common.ErrorUnauthorized, http.StatusUnauthorized, "Could not validate credentials"},
		{services.ErrUsernameTaken, http.StatusBadRequest, "Username already registered"},
		{fmt.Errorf("error creating user: %w", common.ErrorAlreadyExists), http.StatusBadRequest, "Username or email already registered"},
		{services.ErrInvalidCode, http.StatusBadRequest, "Invalid verification code"},
		{services.ErrFileTypeNotAllowed, http.StatusBadRequest, "File type not allowed"},
		{services.ErrFileTooLarge, http.StatusBadRequest, "File too large"},
		{services.ErrInvalidFileContent, http.StatusBadRequest, "Invalid file content"},
		{services.ErrEmptyFile, http.StatusBadRequest, "File content is empty"},
		{services.ErrDuplicateFile, http.StatusBadRequest, "Duplicate file"},
		{services.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{services.ErrImageNotFound, http.StatusNotFound, "Image not found"},
		{services.ErrHeroNotFound, http.StatusNotFound, "Hero not found"},
		{services.ErrNoActiveImage, http.StatusNotFound, "No active images found"},
		{services.ErrActivateRaced, http.StatusInternalServerError, genericErrorDetail},
		{errors.New("db error: connection refused"), http.StatusInternalServerError, genericErrorDetail},
	}

	for _, tt := range tests {
		status, d := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.detail, d, tt.err.Error())
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	us := &stubUsers{current: func(string) (*models.User, error) { return &models.User{ID: 1}, nil }}
	h := newStubServer(us, &stubHeroes{err: errors.New("db error: password authentication failed for user postgres")}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/hero/", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := serve(h, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"An unexpected error occurred."}`, rec.Body.String())
}
