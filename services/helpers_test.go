package services

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"web-requests/models"
)

// memStore is an in-memory RecordStore. conflicts makes the next N saves fail
// with ErrVersionConflict.
type memStore struct {
	mu        sync.Mutex
	records   []models.Record
	version   int
	conflicts int
	saves     int
	messages  []string
	loadErr   error
}

func newMemStore(records ...models.Record) *memStore {
	return &memStore{records: records}
}

func (s *memStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	version := ""
	if s.version > 0 {
		version = strconv.Itoa(s.version)
	}
	return &Snapshot{Records: cloneRecords(s.records), Version: version}, nil
}

func (s *memStore) Save(ctx context.Context, records []models.Record, version, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflicts > 0 {
		s.conflicts--
		s.version++
		return "", ErrVersionConflict
	}
	current := ""
	if s.version > 0 {
		current = strconv.Itoa(s.version)
	}
	if version != current {
		return "", ErrVersionConflict
	}
	s.records = cloneRecords(records)
	s.version++
	s.saves++
	s.messages = append(s.messages, message)
	return strconv.Itoa(s.version), nil
}

func (s *memStore) snapshot() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.records)
}

type fakeAttachments struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	putErr    error
	deleteErr map[string]error
	deleted   []string
}

func newFakeAttachments() *fakeAttachments {
	return &fakeAttachments{blobs: make(map[string][]byte), deleteErr: make(map[string]error)}
}

func (f *fakeAttachments) Put(ctx context.Context, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if _, exists := f.blobs[name]; exists {
		return errors.New("blob exists")
	}
	f.blobs[name] = data
	return nil
}

func (f *fakeAttachments) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[name]; err != nil {
		return err
	}
	delete(f.blobs, name)
	f.deleted = append(f.deleted, name)
	return nil
}

type fakeNotifier struct {
	notified []models.Record
	err      error
}

func (f *fakeNotifier) NotifyPosted(ctx context.Context, record *models.Record) error {
	f.notified = append(f.notified, *record)
	return f.err
}

type fakeMailer struct {
	to      []string
	subject string
	html    string
	err     error
}

func (m *fakeMailer) SendMail(to []string, subject, html string) error {
	m.to = to
	m.subject = subject
	m.html = html
	return m.err
}
