package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/herostore/internal/common"
	"github.com/dmitrijs2005/herostore/internal/server/services"
	"github.com/gin-gonic/gin"
)

const genericErrorDetail = "An unexpected error occurred."

type errorMapping struct {
	err    error
	status int
	detail string
}

// errorMappings is searched in order, so specific errors come before the
// generic sentinels they wrap.
var errorMappings = []errorMapping{
	{services.ErrEmailNotVerified, http.StatusUnauthorized, "Email not verified"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "Could not validate credentials"},

	{services.ErrUsernameTaken, http.StatusBadRequest, "Username already registered"},
	{services.ErrEmailTaken, http.StatusBadRequest, "Email already registered"},
	{common.ErrorAlreadyExists, http.StatusBadRequest, "Username or email already registered"},
	{services.ErrInvalidCode, http.StatusBadRequest, "Invalid verification code"},
	{services.ErrAlreadyVerified, http.StatusBadRequest, "Email already verified"},

	{services.ErrFileTypeNotAllowed, http.StatusBadRequest, "File type not allowed"},
	{services.ErrFileTooLarge, http.StatusBadRequest, "File too large"},
	{services.ErrInvalidFileContent, http.StatusBadRequest, "Invalid file content"},
	{services.ErrEmptyFile, http.StatusBadRequest, "File content is empty"},
	{services.ErrDuplicateFile, http.StatusBadRequest, "Duplicate file"},
	{common.ErrorInvalidInput, http.StatusBadRequest, "Invalid input"},

	{services.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{services.ErrImageNotFound, http.StatusNotFound, "Image not found"},
	{services.ErrHeroNotFound, http.StatusNotFound, "Hero not found"},
	{services.ErrNoActiveImage, http.StatusNotFound, "No active images found"},
	{common.ErrorNotFound, http.StatusNotFound, "Not found"},
}

func classify(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.detail
		}
	}
	return http.StatusInternalServerError, genericErrorDetail
}

// writeError aborts the request with the status and detail err maps to.
// Unmapped errors are logged and answered with a generic 500.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status, detail := classify(err)

	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(ctxRequestIDKey),
			"error", err,
		)
	}

	if status == http.StatusUnauthorized {
		unauthorized(c, detail)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", common.BearerScheme)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

func unprocessable(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": detail})
}
