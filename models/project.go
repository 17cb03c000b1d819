package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectClosed    ProjectStatus = "closed"
)

// Project is a capital project tracked by a tenant.
type Project struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name        string         `gorm:"not null" json:"name"`
	Code        *string        `json:"code,omitempty"`
	Client      *string        `json:"client,omitempty"`
	Status      ProjectStatus  `gorm:"not null;default:draft" json:"status"`
	Description *string        `json:"description,omitempty"`
	LeadManager *string        `json:"lead_manager,omitempty"`
	StartDate   *string        `gorm:"type:date" json:"start_date,omitempty"`
	EndDate     *string        `gorm:"type:date" json:"end_date,omitempty"`
	PED         *string        `gorm:"column:ped;type:date" json:"ped,omitempty"`
	Budget      float64        `gorm:"type:numeric;not null;default:0" json:"budget"`
	Spent       float64        `gorm:"type:numeric;not null;default:0" json:"spent"`
	Funding     datatypes.JSON `json:"funding,omitempty"`
	Tags        datatypes.JSON `json:"tags,omitempty"`
	Location    datatypes.JSON `json:"location,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
