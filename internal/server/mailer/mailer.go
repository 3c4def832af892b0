// Package mailer sends account emails through an SMTP relay.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers verification codes to users.
type Sender interface {
	SendVerificationCode(email, code string) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpSender struct {
	dialer dialer
	from   string
}

// NewSMTPSender returns a Sender that dials host:port for every message.
// An empty from falls back to the SMTP user.
func NewSMTPSender(host string, port int, user, password, from string) Sender {
	if from == "" {
		from = user
	}
	return &smtpSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *smtpSender) SendVerificationCode(email, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Email Verification")
	m.SetBody("text/plain", fmt.Sprintf("Your verification code is: %s", code))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}
