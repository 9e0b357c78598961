package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"web-requests/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBRecordStore keeps the collection as one row of record_blobs and logs every
// accepted write to record_blob_revisions.
type DBRecordStore struct {
	db     *gorm.DB
	name   string
	branch string
}

func NewDBRecordStore(db *gorm.DB, name, branch string) *DBRecordStore {
	return &DBRecordStore{db: db, name: name, branch: branch}
}

// Migrate creates the blob and revision tables.
func (s *DBRecordStore) Migrate() error {
	return s.db.AutoMigrate(&models.RecordBlob{}, &models.RecordBlobRevision{})
}

func (s *DBRecordStore) Load(ctx context.Context) (*Snapshot, error) {
	var blob models.RecordBlob
	err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Snapshot{Records: []models.Record{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record blob %s: %w", s.name, err)
	}

	records, err := decodeRecords(blob.Content)
	if err != nil {
		return nil, fmt.Errorf("record blob %s: %w", s.name, err)
	}
	return &Snapshot{Records: records, Version: blob.Version}, nil
}

func (s *DBRecordStore) Save(ctx context.Context, records []models.Record, version, message string) (string, error) {
	content, err := encodeRecords(records)
	if err != nil {
		return "", err
	}
	newVersion := contentVersion(content)
	now := time.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if version == "" {
			blob := models.RecordBlob{
				Name:      s.name,
				Branch:    s.branch,
				Content:   datatypes.JSON(content),
				Version:   newVersion,
				UpdatedAt: now,
			}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&blob)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrVersionConflict
			}
		} else {
			result := tx.Model(&models.RecordBlob{}).
				Where("name = ? AND version = ?", s.name, version).
				Updates(map[string]interface{}{
					"branch":     s.branch,
					"content":    datatypes.JSON(content),
					"version":    newVersion,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrVersionConflict
			}
		}

		return tx.Create(&models.RecordBlobRevision{
			Name:      s.name,
			Version:   newVersion,
			Message:   message,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return "", err
		}
		return "", fmt.Errorf("failed to save record blob %s: %w", s.name, err)
	}
	return newVersion, nil
}

// Revisions returns the write log, newest first.
func (s *DBRecordStore) Revisions(ctx context.Context, limit int) ([]models.RecordBlobRevision, error) {
	var revisions []models.RecordBlobRevision
	query := s.db.WithContext(ctx).Where("name = ?", s.name).Order("revision_id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&revisions).Error; err != nil {
		return nil, err
	}
	return revisions, nil
}
