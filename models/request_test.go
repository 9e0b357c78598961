package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsAcceptsStringOrList(t *testing.T) {
	cases := map[string]Paths{
		`"data/a.png"`:                {"data/a.png"},
		`""`:                          {},
		`null`:                        {},
		`[]`:                          {},
		`["data/a.png", "", "b.pdf"]`: {"data/a.png", "b.pdf"},
	}
	for raw, want := range cases {
		var got Paths
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		assert.Equal(t, want, got, raw)
	}

	var bad Paths
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &bad))
}

func TestRecordDecodesLegacyShape(t *testing.T) {
	raw := `{"user_name":"Ana","user_email":"ana@uni.es","department":"CEP","topic":"T","message":"M","images":"","file":"data/file_x.pdf","state":"pending","timestamp":"20240101_120000"}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Empty(t, r.Images)
	assert.Equal(t, Paths{"data/file_x.pdf"}, r.File)
	assert.Equal(t, []string{"data/file_x.pdf"}, r.Attachments())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"images":[]`)
	assert.NotContains(t, string(out), `"code"`)
	assert.NotContains(t, string(out), `"posted_timestamp"`)
}

func TestEnsureIDIsDeterministic(t *testing.T) {
	a := Record{UserEmail: "ana@uni.es", Timestamp: "20240101_120000", Topic: "T"}
	b := a
	a.EnsureID()
	b.EnsureID()
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, b.ID)

	c := Record{UserEmail: "ana@uni.es", Timestamp: "20240101_120001", Topic: "T"}
	c.EnsureID()
	assert.NotEqual(t, a.ID, c.ID)

	existing := Record{ID: "keep-me"}
	existing.EnsureID()
	assert.Equal(t, "keep-me", existing.ID)
}

func TestParseTimestamp(t *testing.T) {
	legacy, err := ParseTimestamp("20250314_093000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local), legacy)

	rfc, err := ParseTimestamp(FormatTimestamp(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.True(t, rfc.Equal(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)))

	for _, raw := range []string{"", "   ", "14/03/2025", "20251314_093000"} {
		_, err := ParseTimestamp(raw)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, raw)
	}
}

func TestParseTimestampUsesLocalCalendar(t *testing.T) {
	saved := time.Local
	time.Local = time.FixedZone("UTC-4", -4*60*60)
	t.Cleanup(func() { time.Local = saved })

	submitted := time.Date(2025, 3, 31, 21, 30, 0, 0, time.Local)
	stored := FormatTimestamp(submitted)
	assert.Equal(t, "2025-04-01T01:30:00Z", stored)

	fromNew, err := ParseTimestamp(stored)
	require.NoError(t, err)
	fromLegacy, err := ParseTimestamp("20250331_213000")
	require.NoError(t, err)

	assert.True(t, fromNew.Equal(fromLegacy))
	assert.Equal(t, time.March, fromNew.Month())
	assert.Equal(t, 31, fromNew.Day())
}

func TestAttachmentUploadTypes(t *testing.T) {
	assert.True(t, (&AttachmentUpload{Kind: AttachmentImage, OriginalName: "a.JPG"}).IsAllowed())
	assert.True(t, (&AttachmentUpload{Kind: AttachmentImage, MimeType: "image/png", OriginalName: "cartel.png"}).IsAllowed())
	assert.True(t, (&AttachmentUpload{Kind: AttachmentImage, MimeType: "application/octet-stream", OriginalName: "cartel.jpeg"}).IsAllowed())
	assert.False(t, (&AttachmentUpload{Kind: AttachmentImage, MimeType: "image/png", OriginalName: "blob"}).IsAllowed())
	assert.False(t, (&AttachmentUpload{Kind: AttachmentImage, MimeType: "image/png", OriginalName: "payload.exe"}).IsAllowed())
	assert.False(t, (&AttachmentUpload{Kind: AttachmentImage, MimeType: "application/pdf", OriginalName: "cartel.png"}).IsAllowed())
	assert.False(t, (&AttachmentUpload{Kind: AttachmentFile, MimeType: "application/pdf", OriginalName: "acta.exe"}).IsAllowed())
	assert.False(t, (&AttachmentUpload{Kind: AttachmentImage, OriginalName: "a.pdf"}).IsAllowed())
	assert.True(t, (&AttachmentUpload{Kind: AttachmentFile, OriginalName: "acta.docx"}).IsAllowed())
	assert.False(t, (&AttachmentUpload{Kind: AttachmentFile, OriginalName: "acta.doc"}).IsAllowed())
	assert.False(t, (&AttachmentUpload{Kind: "video", OriginalName: "a.png"}).IsAllowed())

	assert.Equal(t, 2.0, (&AttachmentUpload{Data: make([]byte, 2*1024*1024)}).GetFileSizeInMB())
}
