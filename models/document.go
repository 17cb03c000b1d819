package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentCategory string

const (
	CategoryContract      DocumentCategory = "contract"
	CategoryInvoice       DocumentCategory = "invoice"
	CategoryEnvironmental DocumentCategory = "environmental"
	CategoryGrant         DocumentCategory = "grant"
	CategoryMeeting       DocumentCategory = "meeting"
	CategoryCaltrans      DocumentCategory = "caltrans"
	CategoryOther         DocumentCategory = "other"
)

// Document is the metadata row for a file kept in the documents bucket.
// The same shape is indexed in Elasticsearch for search.
type Document struct {
	// ID is a UUID in Postgres and a keyword in the search index.
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// TenantID scopes the document; search queries always filter on it.
	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`

	ProjectID *string `gorm:"type:uuid" json:"project_id,omitempty"`

	// Title is analysed as text for full-text search.
	Title string `gorm:"not null" json:"title"`

	Category DocumentCategory `gorm:"not null" json:"category"`

	// StoragePath is "documents/<object key>" inside Supabase storage.
	StoragePath string `gorm:"not null" json:"storage_path"`

	Version    int            `gorm:"not null;default:1" json:"version"`
	UploadedBy *string        `gorm:"type:uuid" json:"uploaded_by,omitempty"`
	Tags       datatypes.JSON `json:"tags,omitempty"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	if d.Version == 0 {
		d.Version = 1
	}
	return nil
}
