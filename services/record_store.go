package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"web-requests/models"
)

var (
	// ErrVersionConflict means the collection changed since it was loaded.
	ErrVersionConflict = errors.New("record store version conflict")
	ErrRecordNotFound  = errors.New("request not found")
	ErrAlreadyPosted   = errors.New("request is already posted")
)

// Snapshot is the full collection plus the version token it was read at.
// An empty Version means the collection does not exist yet.
type Snapshot struct {
	Records []models.Record
	Version string
}

// RecordStore keeps the request collection as a single document.
type RecordStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	// Save replaces the whole collection if the stored version still equals
	// version, and returns the new version. It returns ErrVersionConflict otherwise.
	Save(ctx context.Context, records []models.Record, version, message string) (string, error)
}

func encodeRecords(records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRecords(data []byte) ([]models.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Record{}, nil
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if records == nil {
		records = []models.Record{}
	}
	for i := range records {
		records[i].EnsureID()
	}
	return records, nil
}

func contentVersion(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cloneRecords(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		r.Images = append(models.Paths{}, r.Images...)
		r.File = append(models.Paths{}, r.File...)
		out[i] = r
	}
	return out
}

func indexOfRecord(records []models.Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
