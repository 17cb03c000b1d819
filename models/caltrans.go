package models

import (
	"time"

	"gorm.io/gorm"
)

// PhaseType is a Caltrans LAPM authorization phase.
type PhaseType string

const (
	PhasePE     PhaseType = "PE"
	PhaseRW     PhaseType = "RW"
	PhaseRWUtil PhaseType = "RW_UTIL"
	PhaseCON    PhaseType = "CON"
	PhaseCE     PhaseType = "CE"
)

type PhaseStatus string

const (
	PhasePlanned    PhaseStatus = "planned"
	PhaseAuthorized PhaseStatus = "authorized"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseSubmitted  PhaseStatus = "submitted"
	PhaseClosed     PhaseStatus = "closed"
)

// CaltransPhase tracks E-76 authorization and the PED deadline for one
// phase of a federally funded project.
type CaltransPhase struct {
	ID                string      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID          string      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID         string      `gorm:"type:uuid;not null;index" json:"project_id"`
	Phase             PhaseType   `gorm:"not null" json:"phase"`
	Status            PhaseStatus `gorm:"not null;default:planned" json:"status"`
	E76Number         *string     `gorm:"column:e76_number" json:"e76_number,omitempty"`
	AuthorizationDate *string     `gorm:"type:date" json:"authorization_date,omitempty"`
	PedDueDate        *string     `gorm:"type:date" json:"ped_due_date,omitempty"`
	NepaStatus        *string     `json:"nepa_status,omitempty"`
	PSECertified      bool        `gorm:"column:ps_e_certified;not null;default:false" json:"ps_e_certified"`
	FederalFunds      *float64    `gorm:"type:numeric" json:"federal_funds,omitempty"`
	StateFunds        *float64    `gorm:"type:numeric" json:"state_funds,omitempty"`
	LocalFunds        *float64    `gorm:"type:numeric" json:"local_funds,omitempty"`
	DBEGoal           *float64    `gorm:"column:dbe_goal;type:numeric" json:"dbe_goal,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

func (p *CaltransPhase) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// CaltransInvoice is a progress invoice submitted against a phase.
type CaltransInvoice struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID     string    `gorm:"type:uuid;not null" json:"project_id"`
	Phase         PhaseType `json:"phase"`
	InvoiceNumber *string   `json:"invoice_number,omitempty"`
	PeriodStart   *string   `gorm:"type:date" json:"period_start,omitempty"`
	PeriodEnd     *string   `gorm:"type:date" json:"period_end,omitempty"`
	SubmittedOn   *string   `gorm:"type:date" json:"submitted_on,omitempty"`
	Status        string    `gorm:"not null;default:draft" json:"status"`
	TotalAmount   float64   `gorm:"type:numeric;not null;default:0" json:"total_amount"`
	FederalShare  float64   `gorm:"type:numeric;not null;default:0" json:"federal_share"`
	StateShare    float64   `gorm:"type:numeric;not null;default:0" json:"state_share"`
	LocalShare    float64   `gorm:"type:numeric;not null;default:0" json:"local_share"`
	DocumentURL   *string   `json:"document_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (i *CaltransInvoice) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
