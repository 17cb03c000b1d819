package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GrantStage string

const (
	StageProspecting GrantStage = "prospecting"
	StageDrafting    GrantStage = "drafting"
	StageSubmitted   GrantStage = "submitted"
	StageAwarded     GrantStage = "awarded"
	StageDenied      GrantStage = "denied"
	StageReporting   GrantStage = "reporting"
)

// Grant is one funding opportunity in the tenant's pipeline.
type Grant struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        string         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID       *string        `gorm:"type:uuid" json:"project_id,omitempty"`
	Name            string         `gorm:"not null" json:"name"`
	GrantType       *string        `json:"grant_type,omitempty"`
	Stage           GrantStage     `gorm:"not null;default:prospecting" json:"stage"`
	FundingSource   *string        `json:"funding_source,omitempty"`
	Deadline        *string        `gorm:"type:date" json:"deadline,omitempty"`
	AwardDate       *string        `gorm:"type:date" json:"award_date,omitempty"`
	RequestedAmount *float64       `gorm:"type:numeric" json:"requested_amount,omitempty"`
	MatchAmount     *float64       `gorm:"type:numeric" json:"match_amount,omitempty"`
	Summary         *string        `json:"summary,omitempty"`
	Narrative       datatypes.JSON `json:"narrative,omitempty"`
	Reminders       datatypes.JSON `json:"reminders,omitempty"`
	AIContext       datatypes.JSON `gorm:"column:ai_context" json:"ai_context,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (g *Grant) BeforeCreate(tx *gorm.DB) error {
	assignID(&g.ID)
	return nil
}
