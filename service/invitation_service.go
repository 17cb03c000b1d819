package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invitationTTL = 7 * 24 * time.Hour

type InvitationInput struct {
	Email string           `json:"email" binding:"required"`
	Role  model.TenantRole `json:"role"`
}

type InvitationResult struct {
	InviteURL string    `json:"inviteUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateInvitation issues a single-use invite link into the tenant. Only
// admins and managers may invite.
func (s *AgencyService) CreateInvitation(ctx context.Context, tenant *model.Tenant, role model.TenantRole, in InvitationInput) (*InvitationResult, error) {
	if !DeriveRolePermissions(role).CanInviteMembers {
		return nil, fmt.Errorf("%w: only tenant managers can invite new members", ErrForbidden)
	}

	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, invalid("valid email required")
	}
	inviteRole := in.Role
	if inviteRole == "" {
		inviteRole = model.RoleViewer
	}
	if !ValidRole(inviteRole) {
		return nil, invalid("unknown role %q", inviteRole)
	}

	invite := model.TenantInvitation{
		TenantID:  tenant.ID,
		Email:     email,
		Role:      inviteRole,
		Token:     uuid.NewString(),
		ExpiresAt: timeNow().Add(invitationTTL),
	}
	if err := s.db.WithContext(ctx).Create(&invite).Error; err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	s.logger.Info("invitation created", zap.String("tenant_id", tenant.ID), zap.String("role", string(inviteRole)))

	return &InvitationResult{
		InviteURL: fmt.Sprintf("%s/invite/%s", strings.TrimRight(s.appURL, "/"), invite.Token),
		ExpiresAt: invite.ExpiresAt,
	}, nil
}

// AcceptInvitation adds the user to the invitation's tenant, makes it the
// active tenant and consumes the invitation.
func (s *AgencyService) AcceptInvitation(ctx context.Context, userID, token string) (*model.Tenant, error) {
	if strings.TrimSpace(token) == "" {
		return nil, invalid("missing invite token")
	}

	var tenant model.Tenant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite model.TenantInvitation
		if err := tx.Where("token = ?", token).First(&invite).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("invitation not found or already used: %w", ErrNotFound)
			}
			return err
		}
		if invite.ExpiresAt.Before(timeNow()) {
			return ErrInvitationExpired
		}
		if !ValidRole(invite.Role) {
			return invalid("invalid role on invitation")
		}

		membership := model.TenantUser{
			TenantID: invite.TenantID,
			UserID:   userID,
			Role:     invite.Role,
			Status:   "active",
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).Create(&membership).Error; err != nil {
			return fmt.Errorf("upsert membership: %w", err)
		}

		profile := model.Profile{ID: userID, CurrentTenant: &invite.TenantID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_tenant"}),
		}).Create(&profile).Error; err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}

		if err := tx.Delete(&model.TenantInvitation{}, "id = ?", invite.ID).Error; err != nil {
			return fmt.Errorf("consume invitation: %w", err)
		}
		return tx.First(&tenant, "id = ?", invite.TenantID).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invitation accepted", zap.String("tenant_id", tenant.ID), zap.String("user_id", userID))
	return &tenant, nil
}
