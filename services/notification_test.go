package services

import (
	"context"
	"testing"

	"web-requests/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailNotifierSendsPostedMail(t *testing.T) {
	mailer := &fakeMailer{}
	notifier := NewMailNotifier(mailer, "https://fbio.example.es/")

	record := &models.Record{
		UserName:        "Ana <García>",
		UserEmail:       "ana@uni.es",
		Department:      "CEP",
		Topic:           "Seminario",
		Timestamp:       "2025-03-14T09:30:00Z",
		PostedTimestamp: "2025-03-15T10:00:00Z",
	}
	require.NoError(t, notifier.NotifyPosted(context.Background(), record))

	assert.Equal(t, []string{"ana@uni.es"}, mailer.to)
	assert.Equal(t, "Su publicación ha sido aprobada", mailer.subject)
	assert.Contains(t, mailer.html, `<html lang="es">`)
	assert.Contains(t, mailer.html, "<strong>Ana &lt;García&gt;</strong>")
	assert.Contains(t, mailer.html, "Seminario")
	assert.Contains(t, mailer.html, `href="https://fbio.example.es/"`)
}

func TestMailNotifierSkipsRecordsWithoutEmail(t *testing.T) {
	mailer := &fakeMailer{}
	require.NoError(t, NewMailNotifier(mailer, "").NotifyPosted(context.Background(), &models.Record{}))
	assert.Nil(t, mailer.to)
}

func TestBuildEmailTemplateOmitsEmptyMetaAndButton(t *testing.T) {
	html := buildEmailTemplate("Asunto", []string{"uno\ndos", "  "}, []emailMetaItem{{Label: "Tema", Value: ""}}, "", "")
	assert.Contains(t, html, "uno<br />dos")
	assert.NotContains(t, html, "<table")
	assert.NotContains(t, html, "<a href")
}
