package smtp

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
	"github.com/go-verify-mail/internal/config"
	"github.com/go-verify-mail/internal/domain"
)

// dialer is the part of *mail.Dialer used for sending; swapped out in tests.
type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer sends messages through an authenticated SMTP relay (Gmail by default).
type Mailer struct {
	dialer dialer
}

// NewMailer builds a Mailer authenticating with the configured sender credentials.
func NewMailer(cfg *config.Config) *Mailer {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUsername, cfg.EmailAppPassword)
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	if cfg.SMTPPort == 465 {
		d.SSL = true
	}
	return &Mailer{dialer: d}
}

// Send delivers msg as multipart/alternative (text + HTML).
// go-mail has no context support; ctx is only checked before dialing.
func (m *Mailer) Send(ctx context.Context, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(buildMessage(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(msg domain.Message) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}
	return m
}
