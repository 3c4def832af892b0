package models

import "time"

// User is a registered account. EmailVerificationCode is nil once the
// address has been confirmed.
type User struct {
	ID                    int64
	Username              string
	Email                 string
	PasswordHash          string
	RegistrationDate      time.Time
	IsEmailVerified       bool
	EmailVerificationCode *string
}
