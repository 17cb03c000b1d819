package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SalesTaxProgram tracks revenue and spending for a local sales-tax measure.
type SalesTaxProgram struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     string         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Measure      string         `gorm:"not null" json:"measure"`
	Revenue      *float64       `gorm:"type:numeric" json:"revenue,omitempty"`
	Expenditures *float64       `gorm:"type:numeric" json:"expenditures,omitempty"`
	Status       string         `gorm:"not null;default:draft" json:"status"`
	Report       datatypes.JSON `json:"report,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (s *SalesTaxProgram) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
