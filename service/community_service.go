package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var communityStatuses = map[model.CommunityStatus]bool{
	model.CommunityNew:      true,
	model.CommunityReview:   true,
	model.CommunityApproved: true,
	model.CommunityArchived: true,
}

// CommunitySubmission is the public portal form.
type CommunitySubmission struct {
	Category    string          `json:"category" binding:"required"`
	ProjectID   *string         `json:"project_id"`
	DisplayName *string         `json:"display_name"`
	Email       *string         `json:"email"`
	Description *string         `json:"description"`
	Latitude    *float64        `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude   *float64        `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	GeoJSON     json.RawMessage `json:"geojson"`
	PhotoURL    *string         `json:"photo_url"`
}

// SubmitCommunityInput records a public submission for the tenant with the
// given slug and alerts staff.
func (s *AgencyService) SubmitCommunityInput(ctx context.Context, slug string, in CommunitySubmission) (*model.CommunityInput, error) {
	tenant, err := s.GetTenantBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, invalid("category is required")
	}
	email := trimmedOrNil(in.Email)
	if email != nil {
		if _, err := mail.ParseAddress(*email); err != nil {
			return nil, invalid("invalid email address")
		}
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return nil, invalid("latitude out of range")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return nil, invalid("longitude out of range")
	}
	var geo datatypes.JSON
	if len(in.GeoJSON) > 0 && string(in.GeoJSON) != "null" {
		if !json.Valid(in.GeoJSON) {
			return nil, invalid("geojson must be valid JSON")
		}
		geo = datatypes.JSON(in.GeoJSON)
	}

	input := model.CommunityInput{
		TenantID:    tenant.ID,
		ProjectID:   trimmedOrNil(in.ProjectID),
		DisplayName: trimmedOrNil(in.DisplayName),
		Email:       email,
		Category:    category,
		Description: trimmedOrNil(in.Description),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		GeoJSON:     geo,
		PhotoURL:    trimmedOrNil(in.PhotoURL),
		Status:      model.CommunityNew,
		Source:      "portal",
	}
	if err := s.db.WithContext(ctx).Create(&input).Error; err != nil {
		return nil, fmt.Errorf("create community input: %w", err)
	}

	message := fmt.Sprintf("%s submission for %s", category, tenant.Name)
	if input.Description != nil {
		message += ": " + *input.Description
	}
	s.notifier.Dispatch(ctx, "New community input", message)
	s.logger.Info("community input received", zap.String("tenant", tenant.Slug), zap.String("category", category))
	return &input, nil
}

func (s *AgencyService) ListCommunityInputs(ctx context.Context, tenantID string) ([]model.CommunityInput, error) {
	var inputs []model.CommunityInput
	if err := s.scoped(ctx, tenantID).Order("created_at desc").Find(&inputs).Error; err != nil {
		return nil, err
	}
	return inputs, nil
}

// ReviewCommunityInput moves a submission through the moderation workflow.
func (s *AgencyService) ReviewCommunityInput(ctx context.Context, tenantID string, role model.TenantRole, inputID string, status model.CommunityStatus) error {
	if !DeriveRolePermissions(role).CanReviewCommunity {
		return fmt.Errorf("%w: cannot review community input", ErrForbidden)
	}
	if !communityStatuses[status] {
		return invalid("invalid status %q", status)
	}
	return s.updateScoped(ctx, &model.CommunityInput{}, tenantID, inputID, map[string]any{"status": status})
}

// ApprovedCommunityInputs is the public feed for the portal map. Contact
// details are never included.
func (s *AgencyService) ApprovedCommunityInputs(ctx context.Context, slug string) ([]model.CommunityInput, error) {
	tenant, err := s.GetTenantBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	var inputs []model.CommunityInput
	if err := s.scoped(ctx, tenant.ID).
		Where("status = ?", model.CommunityApproved).
		Order("created_at desc").
		Find(&inputs).Error; err != nil {
		return nil, err
	}
	for i := range inputs {
		inputs[i].Email = nil
	}
	return inputs, nil
}
