package models

import (
	"path/filepath"
	"strings"
)

// Attachment kinds accepted by the request form.
const (
	AttachmentImage = "image"
	AttachmentFile  = "file"
)

// AttachmentUpload is one uploaded blob waiting to be stored.
type AttachmentUpload struct {
	Kind         string
	OriginalName string
	MimeType     string
	Data         []byte
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

var documentExtensions = map[string]bool{".pdf": true, ".docx": true}

// genericMimeTypes carry no type information and are not checked.
var genericMimeTypes = map[string]bool{"": true, "application/octet-stream": true}

// IsValidImageType accepts the jpg/png images the form offers. The extension
// must match; a specific MIME type must match too.
func (a *AttachmentUpload) IsValidImageType() bool {
	if !imageExtensions[strings.ToLower(filepath.Ext(a.OriginalName))] {
		return false
	}
	validTypes := []string{"image/jpeg", "image/jpg", "image/png"}
	return a.mimeAllowed(validTypes)
}

// IsValidDocumentType accepts pdf and docx files.
func (a *AttachmentUpload) IsValidDocumentType() bool {
	if !documentExtensions[strings.ToLower(filepath.Ext(a.OriginalName))] {
		return false
	}
	validTypes := []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	return a.mimeAllowed(validTypes)
}

func (a *AttachmentUpload) mimeAllowed(validTypes []string) bool {
	mimeType := strings.ToLower(strings.TrimSpace(a.MimeType))
	if genericMimeTypes[mimeType] {
		return true
	}
	for _, validType := range validTypes {
		if mimeType == validType {
			return true
		}
	}
	return false
}

// IsAllowed checks the upload against its kind.
func (a *AttachmentUpload) IsAllowed() bool {
	switch a.Kind {
	case AttachmentImage:
		return a.IsValidImageType()
	case AttachmentFile:
		return a.IsValidDocumentType()
	default:
		return false
	}
}

func (a *AttachmentUpload) GetFileSizeInMB() float64 {
	return float64(len(a.Data)) / (1024 * 1024)
}
