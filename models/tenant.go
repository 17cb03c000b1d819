package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TenantRole is the role a user holds inside one tenant.
type TenantRole string

const (
	RoleAdmin   TenantRole = "admin"
	RoleManager TenantRole = "manager"
	RoleStaff   TenantRole = "staff"
	RoleViewer  TenantRole = "viewer"
)

// Tenant is one agency (MPO, transit district, city) using the platform.
type Tenant struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Timezone  *string        `json:"timezone,omitempty"`
	Branding  datatypes.JSON `json:"branding,omitempty"`
	Settings  datatypes.JSON `json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// Location returns the tenant's configured timezone, falling back to UTC
// when it is empty or unknown.
func (t *Tenant) Location() *time.Location {
	if t == nil || t.Timezone == nil || *t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(*t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Profile mirrors the auth user with app-level preferences.
type Profile struct {
	ID            string         `gorm:"type:uuid;primaryKey" json:"id"`
	FullName      *string        `json:"full_name,omitempty"`
	AvatarURL     *string        `json:"avatar_url,omitempty"`
	Title         *string        `json:"title,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	CurrentTenant *string        `gorm:"type:uuid" json:"current_tenant,omitempty"`
	Preferences   datatypes.JSON `json:"preferences,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TenantUser is a membership row linking a user to a tenant.
type TenantUser struct {
	TenantID  string     `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	UserID    string     `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      TenantRole `gorm:"not null;default:viewer" json:"role"`
	Status    string     `gorm:"not null;default:active" json:"status"`
	InvitedBy *string    `gorm:"type:uuid" json:"invited_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Tenant    *Tenant    `gorm:"foreignKey:TenantID" json:"tenants,omitempty"`
}

// TenantInvitation is a pending, single-use invite into a tenant.
type TenantInvitation struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string     `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Email     string     `gorm:"not null" json:"email"`
	Role      TenantRole `gorm:"not null" json:"role"`
	Token     string     `gorm:"uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (i *TenantInvitation) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
