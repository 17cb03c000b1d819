package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MeetingType string

const (
	MeetingBoard     MeetingType = "board"
	MeetingCouncil   MeetingType = "council"
	MeetingCommunity MeetingType = "community"
	MeetingInternal  MeetingType = "internal"
	MeetingTaskForce MeetingType = "task_force"
)

type Meeting struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     string         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID    *string        `gorm:"type:uuid" json:"project_id,omitempty"`
	Title        string         `gorm:"not null" json:"title"`
	MeetingType  MeetingType    `gorm:"not null;default:internal" json:"meeting_type"`
	MeetingDate  *string        `json:"meeting_date,omitempty"`
	Location     *string        `json:"location,omitempty"`
	Agenda       datatypes.JSON `json:"agenda,omitempty"`
	Minutes      datatypes.JSON `json:"minutes,omitempty"`
	Resolutions  *string        `json:"resolutions,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	Status       *string        `json:"status,omitempty"`
	RecordingURL *string        `json:"recording_url,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}
