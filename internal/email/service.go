package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/nurturelink/consult-api/internal/config"
)

type Service interface {
	SendVerificationCode(ctx context.Context, to string, code string) error
	SendWelcome(ctx context.Context, to string, name string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendVerificationCode(ctx context.Context, to string, code string) error {
	body := fmt.Sprintf(`
		<p>Your verification code is:</p>
		<h2>%s</h2>
		<p>The code expires in 10 minutes. If you did not request it, ignore this email.</p>
	`, code)
	return s.send(ctx, to, "Verify your email", body)
}

func (s *smtpService) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account is ready. You can now sign in and get started.</p>
	`, name)
	return s.send(ctx, to, "Welcome", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return s.send(ctx, to, subject, content)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
