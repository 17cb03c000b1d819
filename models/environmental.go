package models

import (
	"time"

	"gorm.io/gorm"
)

// EnvironmentalFactor is one row of the CEQA checklist for a project.
// (project_id, factor) is unique.
type EnvironmentalFactor struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_environmental_project_factor" json:"project_id"`
	Factor       string    `gorm:"not null;uniqueIndex:idx_environmental_project_factor" json:"factor"`
	Status       string    `gorm:"not null" json:"status"`
	Significance *string   `json:"significance,omitempty"`
	Mitigation   *string   `json:"mitigation,omitempty"`
	LeadAgency   *string   `json:"lead_agency,omitempty"`
	DocURL       *string   `gorm:"column:doc_url" json:"doc_url,omitempty"`
	DueDate      *string   `gorm:"type:date" json:"due_date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (f *EnvironmentalFactor) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}
