package config

import (
	"crypto/tls"
	"errors"

	mail "github.com/go-mail/mail/v2"
)

// ErrMailDisabled is returned when SMTP_HOST or SMTP_FROM is not configured.
var ErrMailDisabled = errors.New("smtp not configured (SMTP_HOST/SMTP_FROM)")

// Mailer sends HTML mail through the configured SMTP relay.
type Mailer struct {
	cfg SMTPConfig
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if !m.cfg.Enabled() {
		return ErrMailDisabled
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)

	// STARTTLS is mandatory on 587 for the relays we use (Gmail/Office365).
	d.StartTLSPolicy = mail.MandatoryStartTLS

	// ServerName must match the relay hostname unless verification is skipped.
	d.TLSConfig = &tls.Config{
		ServerName:         m.cfg.Host,
		InsecureSkipVerify: m.cfg.SkipTLSVerify,
	}

	return d.DialAndSend(msg)
}
