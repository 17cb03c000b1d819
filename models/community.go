package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CommunityStatus string

const (
	CommunityNew      CommunityStatus = "new"
	CommunityReview   CommunityStatus = "review"
	CommunityApproved CommunityStatus = "approved"
	CommunityArchived CommunityStatus = "archived"
)

// CommunityInput is a comment or map pin submitted through the public portal.
type CommunityInput struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID   *string         `gorm:"type:uuid" json:"project_id,omitempty"`
	DisplayName *string         `json:"display_name,omitempty"`
	Email       *string         `json:"email,omitempty"`
	Category    string          `gorm:"not null" json:"category"`
	Description *string         `json:"description,omitempty"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	GeoJSON     datatypes.JSON  `gorm:"column:geojson" json:"geojson,omitempty"`
	PhotoURL    *string         `json:"photo_url,omitempty"`
	Status      CommunityStatus `gorm:"not null;default:new" json:"status"`
	Source      string          `gorm:"not null;default:portal" json:"source"`
	Metadata    datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (c *CommunityInput) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
