package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecordBlob holds a whole request collection as one JSON document.
type RecordBlob struct {
	Name      string         `gorm:"primaryKey;column:name;size:191" json:"name"`
	Branch    string         `gorm:"column:branch;size:64;not null;default:main" json:"branch"`
	Content   datatypes.JSON `gorm:"column:content" json:"content"`
	Version   string         `gorm:"column:version;size:64;not null" json:"version"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (RecordBlob) TableName() string {
	return "record_blobs"
}

// RecordBlobRevision logs every accepted write with its message.
type RecordBlobRevision struct {
	RevisionID int       `gorm:"primaryKey;column:revision_id" json:"revision_id"`
	Name       string    `gorm:"column:name;size:191;index" json:"name"`
	Version    string    `gorm:"column:version;size:64" json:"version"`
	Message    string    `gorm:"column:message;type:text" json:"message"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (RecordBlobRevision) TableName() string {
	return "record_blob_revisions"
}
