package services

import (
	"context"
	"strings"

	"web-requests/models"
)

// Mailer is satisfied by *config.Mailer.
type Mailer interface {
	SendMail(to []string, subject, html string) error
}

// Notifier tells a submitter that their request was posted.
type Notifier interface {
	NotifyPosted(ctx context.Context, record *models.Record) error
}

// MailNotifier sends the posted notification by email.
type MailNotifier struct {
	mailer  Mailer
	siteURL string
}

func NewMailNotifier(mailer Mailer, siteURL string) *MailNotifier {
	return &MailNotifier{mailer: mailer, siteURL: strings.TrimSpace(siteURL)}
}

func (n *MailNotifier) NotifyPosted(ctx context.Context, record *models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email := strings.TrimSpace(record.UserEmail)
	if email == "" {
		return nil
	}

	subject := "Su publicación ha sido aprobada"
	paragraphs := []string{
		"Estimado/a <strong>" + record.UserName + "</strong>,",
		"Su petición de publicación en la página web ha sido aprobada y ya se encuentra publicada.",
		"Gracias por su paciencia.",
	}
	meta := []emailMetaItem{
		{Label: "Tema", Value: record.Topic},
		{Label: "Departamento", Value: record.Department},
		{Label: "Fecha de envío", Value: record.Timestamp},
		{Label: "Fecha de publicación", Value: record.PostedTimestamp},
	}
	buttonText := ""
	if n.siteURL != "" {
		buttonText = "Ver la página"
	}

	html := buildEmailTemplate(subject, paragraphs, meta, buttonText, n.siteURL)
	return n.mailer.SendMail([]string{email}, subject, html)
}
