package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"web-requests/models"
)

// FileRecordStore keeps the collection in a local JSON file. The version token
// is the sha256 of the file bytes.
type FileRecordStore struct {
	path string
	mu   sync.Mutex
}

func NewFileRecordStore(path string) *FileRecordStore {
	return &FileRecordStore{path: path}
}

func (s *FileRecordStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, version, err := s.read()
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return &Snapshot{Records: records, Version: version}, nil
}

func (s *FileRecordStore) Save(ctx context.Context, records []models.Record, version, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.read()
	if err != nil {
		return "", err
	}
	if current != version {
		return "", ErrVersionConflict
	}

	content, err := encodeRecords(records)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".records-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write records: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	newVersion := contentVersion(content)
	log.Printf("Record store %s updated (%s): %s", s.path, shortVersion(newVersion), message)
	return newVersion, nil
}

// read returns the file bytes and version, or empty values when the file is absent.
func (s *FileRecordStore) read() ([]byte, string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return data, contentVersion(data), nil
}

func shortVersion(version string) string {
	if len(version) > 12 {
		return version[:12]
	}
	return version
}
