package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RolePermissions are the UI-level capabilities granted by a tenant role.
type RolePermissions struct {
	CanEditProjects    bool `json:"canEditProjects"`
	CanInviteMembers   bool `json:"canInviteMembers"`
	CanReviewCommunity bool `json:"canReviewCommunity"`
}

var permissionMatrix = map[model.TenantRole]RolePermissions{
	model.RoleAdmin:   {CanEditProjects: true, CanInviteMembers: true, CanReviewCommunity: true},
	model.RoleManager: {CanEditProjects: true, CanInviteMembers: true, CanReviewCommunity: true},
	model.RoleStaff:   {CanEditProjects: true, CanInviteMembers: false, CanReviewCommunity: true},
	model.RoleViewer:  {},
}

// DeriveRolePermissions maps a role to its permissions. Unknown or empty
// roles get viewer permissions.
func DeriveRolePermissions(role model.TenantRole) RolePermissions {
	if perms, ok := permissionMatrix[role]; ok {
		return perms
	}
	return permissionMatrix[model.RoleViewer]
}

// ValidRole reports whether role is one of the four tenant roles.
func ValidRole(role model.TenantRole) bool {
	_, ok := permissionMatrix[role]
	return ok
}

func (s *AgencyService) GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tenant %s: %w", slug, ErrNotFound)
		}
		return nil, err
	}
	return &tenant, nil
}

// ActiveTenant resolves the tenant selected in the user's profile together
// with the user's role in it.
func (s *AgencyService) ActiveTenant(ctx context.Context, userID string) (*model.Tenant, model.TenantRole, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrTenantRequired
		}
		return nil, "", err
	}
	if profile.CurrentTenant == nil || *profile.CurrentTenant == "" {
		return nil, "", ErrTenantRequired
	}

	membership, err := s.membership(ctx, *profile.CurrentTenant, userID)
	if err != nil {
		return nil, "", err
	}
	if membership == nil {
		return nil, "", ErrTenantRequired
	}

	var tenant model.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, "id = ?", membership.TenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrTenantRequired
		}
		return nil, "", err
	}
	return &tenant, membership.Role, nil
}

func (s *AgencyService) membership(ctx context.Context, tenantID, userID string) (*model.TenantUser, error) {
	var membership model.TenantUser
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// ListMemberships returns every tenant the user belongs to, oldest first.
func (s *AgencyService) ListMemberships(ctx context.Context, userID string) ([]model.TenantUser, error) {
	var memberships []model.TenantUser
	if err := s.db.WithContext(ctx).
		Preload("Tenant").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&memberships).Error; err != nil {
		s.logger.Error("failed to list memberships", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return memberships, nil
}

// SwitchTenant makes tenantID the user's active tenant. The user must be a
// member of it.
func (s *AgencyService) SwitchTenant(ctx context.Context, userID, tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return invalid("tenant selection required")
	}
	membership, err := s.membership(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return fmt.Errorf("%w: you do not have access to that tenant", ErrForbidden)
	}

	profile := model.Profile{ID: userID, CurrentTenant: &tenantID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_tenant"}),
	}).Create(&profile).Error; err != nil {
		return fmt.Errorf("update current tenant: %w", err)
	}
	s.logger.Info("tenant switched", zap.String("user_id", userID), zap.String("tenant_id", tenantID))
	return nil
}

func (s *AgencyService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

type ProfileInput struct {
	FullName *string `json:"full_name"`
	Title    *string `json:"title"`
	Phone    *string `json:"phone"`
}

// UpdateProfile changes only the fields present in the input.
func (s *AgencyService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.FullName != nil {
		updates["full_name"] = trimmedOrNil(in.FullName)
	}
	if in.Title != nil {
		updates["title"] = trimmedOrNil(in.Title)
	}
	if in.Phone != nil {
		updates["phone"] = trimmedOrNil(in.Phone)
	}
	if len(updates) == 0 {
		return profile, nil
	}
	if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

// TenantSettingsInput is the settings form for a tenant.
type TenantSettingsInput struct {
	Name               *string `json:"name"`
	Timezone           *string `json:"timezone"`
	Accent             *string `json:"accent"`
	LogoURL            *string `json:"logo_url"`
	EnablePublicPortal bool    `json:"enable_public_portal"`
	DefaultDashboard   *string `json:"default_dashboard"`
}

// UpdateTenantSettings rewrites the tenant's name, timezone, branding and
// settings. Only admins and managers may change them.
func (s *AgencyService) UpdateTenantSettings(ctx context.Context, tenant *model.Tenant, role model.TenantRole, in TenantSettingsInput) (*model.Tenant, error) {
	if !DeriveRolePermissions(role).CanInviteMembers {
		return nil, ErrForbidden
	}

	name := tenant.Name
	if v := trimmedOrNil(in.Name); v != nil {
		name = *v
	}
	timezone := tenant.Timezone
	if v := trimmedOrNil(in.Timezone); v != nil {
		if _, err := time.LoadLocation(*v); err != nil {
			return nil, invalid("unknown timezone %q", *v)
		}
		timezone = v
	}

	branding, err := json.Marshal(map[string]any{
		"accent":   stringOr(in.Accent, "#2563eb"),
		"logo_url": trimmedOrNil(in.LogoURL),
	})
	if err != nil {
		return nil, err
	}
	settings, err := json.Marshal(map[string]any{
		"enable_public_portal": in.EnablePublicPortal,
		"default_dashboard":    stringOr(in.DefaultDashboard, "overview"),
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", tenant.ID).Updates(map[string]any{
		"name":     name,
		"timezone": timezone,
		"branding": datatypes.JSON(branding),
		"settings": datatypes.JSON(settings),
	}).Error; err != nil {
		return nil, fmt.Errorf("update tenant settings: %w", err)
	}

	var updated model.Tenant
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", tenant.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// trimmedOrNil trims s and maps empty strings to nil, the way optional form
// fields are stored.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func stringOr(s *string, fallback string) string {
	if v := trimmedOrNil(s); v != nil {
		return *v
	}
	return fallback
}
