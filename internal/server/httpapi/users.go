package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/herostore/internal/common"
	"github.com/dmitrijs2005/herostore/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"info": gin.H{
			"test":        "welcome",
			"title":       "Ecommerce Project",
			"description": "A project for E-commerce",
			"version":     "0.1.0",
		},
	})
}

func (s *HTTPServer) healthz(c *gin.Context) {
	if err := s.db.PingContext(c.Request.Context()); err != nil {
		s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// token implements the OAuth2 password grant: form fields username and
// password in, bearer token out.
func (s *HTTPServer) token(c *gin.Context) {
	username, password := c.PostForm("username"), c.PostForm("password")
	if username == "" || password == "" {
		unprocessable(c, "username and password are required")
		return
	}

	token, err := s.users.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) && !errors.Is(err, services.ErrEmailNotVerified) {
			unauthorized(c, "Incorrect username or password")
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenView{AccessToken: token, TokenType: "bearer"})
}

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err.Error())
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserView(user))
}

func (s *HTTPServer) verifyEmail(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err.Error())
		return
	}

	if err := s.users.VerifyEmail(c.Request.Context(), req.Username, req.Code); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Email verified successfully"})
}

func (s *HTTPServer) resendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err.Error())
		return
	}

	if err := s.users.ResendVerification(c.Request.Context(), req.Username); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Verification code sent"})
}

func (s *HTTPServer) me(c *gin.Context) {
	c.JSON(http.StatusOK, newUserView(currentUser(c)))
}
