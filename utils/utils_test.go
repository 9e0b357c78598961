package utils

import (
	"testing"
	"time"

	"web-requests/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeState(t *testing.T) {
	for raw, want := range map[string]string{
		"pending":     models.StatePending,
		" Pendiente ": models.StatePending,
		"POSTED":      models.StatePosted,
		"publicada":   models.StatePosted,
		"completed":   models.StatePosted,
	} {
		got, ok := NormalizeState(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	got, ok := NormalizeState(" Archived ")
	assert.False(t, ok)
	assert.Equal(t, "archived", got)

	assert.Equal(t, "Publicada", StateLabel(models.StatePosted))
	assert.Equal(t, "archived", StateLabel("archived"))
}

func TestSpanishFormatting(t *testing.T) {
	assert.Equal(t, "Enero", SpanishMonth(1))
	assert.Equal(t, "Diciembre", SpanishMonth(12))
	assert.Equal(t, "13", SpanishMonth(13))

	assert.Equal(t, "Microbiología", CapitalizeFirst("MICROBIOLOGÍA"))
	assert.Equal(t, "Biología animal y humana", CapitalizeFirst("Biología Animal y Humana"))
	assert.Equal(t, "", CapitalizeFirst(""))

	assert.Equal(t, "50%", FormatPercent(50))
	assert.Equal(t, "33.33%", FormatPercent(33.33))
	assert.Equal(t, "0%", FormatPercent(0))

	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
	assert.Equal(t, "04-03-2025 05:06:07", FormatReportDate(ts))
	assert.Equal(t, "", FormatReportDate(time.Time{}))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidateEmail("ana.garcia@uni.es"))
	assert.False(t, ValidateEmail("ana@"))
	assert.Equal(t, "hola", SanitizeInput(" ho\x00la \n"))
	assert.Equal(t, "x.pdf", SanitizeFileName(`C:\fakepath\x.pdf`))
	assert.Equal(t, "", SanitizeFileName(".."))
}
