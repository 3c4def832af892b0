package httpapi

import (
	"time"

	"github.com/dmitrijs2005/herostore/internal/server/models"
)

type userView struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	RegistrationDate time.Time `json:"registration_date"`
	IsEmailVerified  bool      `json:"is_email_verified"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		RegistrationDate: u.RegistrationDate,
		IsEmailVerified:  u.IsEmailVerified,
	}
}

type imageView struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
	Active   bool   `json:"active_img"`
}

func newImageView(img *models.HeroImage) imageView {
	return imageView{ID: img.ID, ImageURL: img.ImageURL, Active: img.Active}
}

// uploadView is returned by the upload endpoint only.
type uploadView struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	ImageURL string `json:"image_url"`
	Active   bool   `json:"active_img"`
}

type tokenView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyRequest struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type resendRequest struct {
	Username string `json:"username" binding:"required"`
}
