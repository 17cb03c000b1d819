package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestOpen       RequestStatus = "open"
	RequestInProgress RequestStatus = "in_progress"
	RequestFulfilled  RequestStatus = "fulfilled"
	RequestClosed     RequestStatus = "closed"
)

// RecordsRequest is a California Public Records Act request.
type RecordsRequest struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID   *string        `gorm:"type:uuid" json:"project_id,omitempty"`
	Requester   string         `gorm:"not null" json:"requester"`
	Contact     *string        `json:"contact,omitempty"`
	Topic       *string        `json:"topic,omitempty"`
	ReceivedOn  string         `gorm:"type:date;not null" json:"received_on"`
	DueOn       *string        `gorm:"type:date" json:"due_on,omitempty"`
	Status      RequestStatus  `gorm:"not null;default:open" json:"status"`
	Fulfillment datatypes.JSON `json:"fulfillment,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (r *RecordsRequest) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}
