package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request states.
const (
	StatePending = "pending"
	StatePosted  = "posted"
)

// TimestampLayout is the layout used by the legacy form ("20060102_150405").
const TimestampLayout = "20060102_150405"

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ErrInvalidTimestamp is returned when a record timestamp matches no known layout.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// legacyNamespace seeds deterministic ids for records stored before ids existed.
var legacyNamespace = uuid.MustParse("5c1f6a0e-8f43-4b8e-9d0a-3f7e2d5b9a11")

// Record is one web publication request as stored in the JSON collection.
type Record struct {
	ID              string          `json:"id"`
	Code            json.RawMessage `json:"code,omitempty"`
	UserName        string          `json:"user_name"`
	UserEmail       string          `json:"user_email"`
	Department      string          `json:"department"`
	Topic           string          `json:"topic"`
	Message         string          `json:"message"`
	Images          Paths           `json:"images"`
	File            Paths           `json:"file"`
	State           string          `json:"state"`
	Timestamp       string          `json:"timestamp"`
	PostedTimestamp string          `json:"posted_timestamp,omitempty"`
}

// IsPosted reports whether the request was approved.
func (r *Record) IsPosted() bool {
	return r.State == StatePosted
}

// Time parses the record timestamp.
func (r *Record) Time() (time.Time, error) {
	return ParseTimestamp(r.Timestamp)
}

// Attachments returns every stored attachment path, images first.
func (r *Record) Attachments() []string {
	out := make([]string, 0, len(r.Images)+len(r.File))
	out = append(out, r.Images...)
	out = append(out, r.File...)
	return out
}

// EnsureID assigns a deterministic id to legacy records that have none, so the
// same record resolves to the same id on every read.
func (r *Record) EnsureID() {
	if r.ID != "" {
		return
	}
	seed := strings.Join([]string{r.Timestamp, r.UserEmail, r.UserName, r.Department, r.Topic, r.Message}, "\x1f")
	r.ID = uuid.NewSHA1(legacyNamespace, []byte(seed)).String()
}

// FormatTimestamp renders t the way new records are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp accepts the legacy form layout and RFC3339 variants. The
// result is always in local time, so legacy local stamps and new UTC stamps
// fall into the same calendar month and year.
func ParseTimestamp(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t.In(time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// Paths is a list of attachment paths. Older records store a single string
// (possibly empty) instead of a list; both forms decode.
type Paths []string

func (p *Paths) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = Paths{}
		return nil
	}
	if trimmed[0] == '"' {
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		if strings.TrimSpace(single) == "" {
			*p = Paths{}
		} else {
			*p = Paths{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return fmt.Errorf("paths must be a string or a list of strings: %w", err)
	}
	out := make(Paths, 0, len(many))
	for _, item := range many {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	*p = out
	return nil
}

func (p Paths) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}
