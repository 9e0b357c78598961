package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"web-requests/models"
	"web-requests/utils"

	"github.com/google/uuid"
)

// Sort keys accepted by List.
const (
	SortTimestampDesc = "timestamp_desc"
	SortTimestampAsc  = "timestamp_asc"
	SortNameAsc       = "name_asc"
	SortNameDesc      = "name_desc"
	SortStatus        = "status"
)

const defaultMaxAttachmentMB = 10.0

// ValidationError carries one message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

type SubmitInput struct {
	UserName    string
	UserEmail   string
	Department  string
	Topic       string
	Message     string
	Attachments []models.AttachmentUpload
}

type ListQuery struct {
	State      string
	Department string
	Sort       string
}

type ListMetrics struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Posted  int `json:"posted"`
}

type ListResult struct {
	Records     []models.Record `json:"records"`
	Metrics     ListMetrics     `json:"metrics"`
	States      []string        `json:"states"`
	Departments []string        `json:"departments"`
}

type RequestServiceOptions struct {
	Lock            WriteLock
	Notifier        Notifier
	Departments     []string
	Prefix          string
	MaxAttempts     int
	MaxAttachmentMB float64
}

// RequestService owns every read and write of the request collection.
type RequestService struct {
	store           RecordStore
	attachments     AttachmentStore
	lock            WriteLock
	notifier        Notifier
	departments     []string
	prefix          string
	maxAttempts     int
	maxAttachmentMB float64
	now             func() time.Time
	newID           func() string
}

func NewRequestService(store RecordStore, attachments AttachmentStore, opts RequestServiceOptions) *RequestService {
	s := &RequestService{
		store:           store,
		attachments:     attachments,
		lock:            opts.Lock,
		notifier:        opts.Notifier,
		departments:     opts.Departments,
		prefix:          strings.Trim(opts.Prefix, "/"),
		maxAttempts:     opts.MaxAttempts,
		maxAttachmentMB: opts.MaxAttachmentMB,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	if s.lock == nil {
		s.lock = NewLocalWriteLock()
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 3
	}
	if s.maxAttachmentMB <= 0 {
		s.maxAttachmentMB = defaultMaxAttachmentMB
	}
	return s
}

// Departments returns the list offered by the request form.
func (s *RequestService) Departments() []string {
	return append([]string(nil), s.departments...)
}

// mutate runs a read-modify-write cycle. fn edits the loaded records and
// returns the collection to store; an error from fn aborts without writing.
func (s *RequestService) mutate(ctx context.Context, message string, fn func([]models.Record) ([]models.Record, error)) error {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		snapshot, err := s.store.Load(ctx)
		if err != nil {
			return err
		}
		records, err := fn(cloneRecords(snapshot.Records))
		if err != nil {
			return err
		}
		_, err = s.store.Save(ctx, records, snapshot.Version, message)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
		log.Printf("Warning: record store changed during %q (attempt %d/%d)", message, attempt, s.maxAttempts)
	}
	return fmt.Errorf("failed to save after %d attempts: %w", s.maxAttempts, ErrVersionConflict)
}

func (s *RequestService) validate(input *SubmitInput) error {
	verr := &ValidationError{}

	input.UserName = utils.SanitizeInput(input.UserName)
	input.UserEmail = utils.SanitizeInput(input.UserEmail)
	input.Department = utils.SanitizeInput(input.Department)
	input.Topic = utils.SanitizeInput(input.Topic)
	input.Message = utils.SanitizeInput(input.Message)

	if input.UserName == "" {
		verr.add("user_name", "name is required")
	}
	if input.UserEmail == "" {
		verr.add("user_email", "email is required")
	} else if !utils.ValidateEmail(input.UserEmail) {
		verr.add("user_email", "invalid email format")
	}
	if input.Department == "" {
		verr.add("department", "department is required")
	} else if !s.isKnownDepartment(input.Department) {
		verr.add("department", "unknown department")
	}
	if input.Topic == "" {
		verr.add("topic", "topic is required")
	}
	if input.Message == "" {
		verr.add("message", "message is required")
	}

	for i := range input.Attachments {
		a := &input.Attachments[i]
		field := "images"
		if a.Kind == models.AttachmentFile {
			field = "files"
		}
		if utils.SanitizeFileName(a.OriginalName) == "" {
			verr.add(field, "file name is required")
			continue
		}
		if !a.IsAllowed() {
			verr.add(field, fmt.Sprintf("%s: file type not allowed", a.OriginalName))
			continue
		}
		if a.GetFileSizeInMB() > s.maxAttachmentMB {
			verr.add(field, fmt.Sprintf("%s: file exceeds %.0f MB", a.OriginalName, s.maxAttachmentMB))
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (s *RequestService) isKnownDepartment(name string) bool {
	for _, d := range s.departments {
		if d == name {
			return true
		}
	}
	return false
}

// Submit validates the form, uploads its attachments and appends a pending
// record. Attachments that fail to upload are dropped from the record.
func (s *RequestService) Submit(ctx context.Context, input SubmitInput) (*models.Record, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	now := s.now()
	stamp := now.Format(models.TimestampLayout)
	record := models.Record{
		ID:         s.newID(),
		UserName:   input.UserName,
		UserEmail:  input.UserEmail,
		Department: input.Department,
		Topic:      input.Topic,
		Message:    input.Message,
		Images:     models.Paths{},
		File:       models.Paths{},
		State:      models.StatePending,
		Timestamp:  models.FormatTimestamp(now),
	}

	// The id prefix and index keep names unique across requests and within one.
	idPart := record.ID
	if len(idPart) > 8 {
		idPart = idPart[:8]
	}
	for i, a := range input.Attachments {
		name := path.Join(s.prefix, fmt.Sprintf("%s_%s_%s_%d_%s", a.Kind, stamp, idPart, i+1, utils.SanitizeFileName(a.OriginalName)))
		if err := s.attachments.Put(ctx, name, a.Data); err != nil {
			log.Printf("Warning: failed to upload attachment %s for request %s: %v", name, record.ID, err)
			continue
		}
		if a.Kind == models.AttachmentImage {
			record.Images = append(record.Images, name)
		} else {
			record.File = append(record.File, name)
		}
	}

	message := "Automated update via web form at " + now.UTC().Format("2006-01-02 15:04:05")
	err := s.mutate(ctx, message, func(records []models.Record) ([]models.Record, error) {
		return append(records, record), nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Request %s submitted by %s (%s)", record.ID, record.UserEmail, record.Department)
	return &record, nil
}

// List filters and sorts the collection for the dashboard.
func (s *RequestService) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	sortKey := strings.TrimSpace(query.Sort)
	if sortKey == "" {
		sortKey = SortTimestampDesc
	}
	switch sortKey {
	case SortTimestampDesc, SortTimestampAsc, SortNameAsc, SortNameDesc, SortStatus:
	default:
		return nil, &ValidationError{Fields: map[string]string{"sort": "unknown sort key " + sortKey}}
	}

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	wantState := ""
	if strings.TrimSpace(query.State) != "" {
		wantState, _ = utils.NormalizeState(query.State)
	}
	wantDepartment := strings.TrimSpace(query.Department)

	stateSet := make(map[string]bool)
	departmentSet := make(map[string]bool)
	result := &ListResult{Records: []models.Record{}}

	for _, r := range snapshot.Records {
		state, _ := utils.NormalizeState(r.State)
		stateSet[state] = true
		if r.Department != "" {
			departmentSet[r.Department] = true
		}
		if wantState != "" && state != wantState {
			continue
		}
		if wantDepartment != "" && r.Department != wantDepartment {
			continue
		}
		result.Records = append(result.Records, r)
		result.Metrics.Total++
		switch state {
		case models.StatePending:
			result.Metrics.Pending++
		case models.StatePosted:
			result.Metrics.Posted++
		}
	}

	sortRecords(result.Records, sortKey)
	result.States = sortedKeys(stateSet)
	result.Departments = sortedKeys(departmentSet)
	return result, nil
}

func sortRecords(records []models.Record, key string) {
	times := make(map[string]time.Time, len(records))
	for _, r := range records {
		// Unparseable timestamps sort as the zero time.
		t, _ := r.Time()
		times[r.ID] = t
	}
	newestFirst := func(a, b models.Record) bool {
		return times[a.ID].After(times[b.ID])
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch key {
		case SortTimestampAsc:
			return times[a.ID].Before(times[b.ID])
		case SortNameAsc:
			return strings.ToLower(a.UserName) < strings.ToLower(b.UserName)
		case SortNameDesc:
			return strings.ToLower(a.UserName) > strings.ToLower(b.UserName)
		case SortStatus:
			if a.IsPosted() != b.IsPosted() {
				return !a.IsPosted()
			}
			return newestFirst(a, b)
		default:
			return newestFirst(a, b)
		}
	})
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *RequestService) Get(ctx context.Context, id string) (*models.Record, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfRecord(snapshot.Records, id)
	if idx < 0 {
		return nil, ErrRecordNotFound
	}
	record := snapshot.Records[idx]
	return &record, nil
}

// Approve marks a pending request as posted, removes its attachments and
// notifies the submitter. Cleanup and mail failures are logged only.
func (s *RequestService) Approve(ctx context.Context, id string) (*models.Record, error) {
	var approved models.Record
	err := s.mutate(ctx, "Update request status to posted", func(records []models.Record) ([]models.Record, error) {
		idx := indexOfRecord(records, id)
		if idx < 0 {
			return nil, ErrRecordNotFound
		}
		if records[idx].IsPosted() {
			return nil, ErrAlreadyPosted
		}
		records[idx].State = models.StatePosted
		records[idx].PostedTimestamp = models.FormatTimestamp(s.now())
		approved = records[idx]
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Request %s posted", approved.ID)

	bg := persistentContext(ctx)
	s.removeAttachments(bg, &approved)

	if s.notifier != nil {
		if err := s.notifier.NotifyPosted(bg, &approved); err != nil {
			log.Printf("Warning: failed to notify %s about request %s: %v", approved.UserEmail, approved.ID, err)
		}
	}
	return &approved, nil
}

// removeAttachments deletes the stored blobs of record and drops the deleted
// paths from the stored record. record is updated to match what was saved.
func (s *RequestService) removeAttachments(ctx context.Context, record *models.Record) {
	deleted := make(map[string]bool)
	for _, name := range record.Attachments() {
		if err := s.attachments.Delete(ctx, name); err != nil {
			log.Printf("Warning: failed to delete attachment %s of request %s: %v", name, record.ID, err)
			continue
		}
		deleted[name] = true
	}
	if len(deleted) == 0 {
		return
	}

	var updated models.Record
	err := s.mutate(ctx, "Remove attachments of posted request", func(records []models.Record) ([]models.Record, error) {
		idx := indexOfRecord(records, record.ID)
		if idx < 0 {
			return nil, ErrRecordNotFound
		}
		records[idx].Images = withoutPaths(records[idx].Images, deleted)
		records[idx].File = withoutPaths(records[idx].File, deleted)
		updated = records[idx]
		return records, nil
	})
	if err != nil {
		log.Printf("Warning: failed to clear attachment paths of request %s: %v", record.ID, err)
		return
	}
	*record = updated
}

func withoutPaths(paths models.Paths, drop map[string]bool) models.Paths {
	out := models.Paths{}
	for _, p := range paths {
		if !drop[p] {
			out = append(out, p)
		}
	}
	return out
}
