package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agiledragon/gomonkey/v2"
	"github.com/google/uuid"
	model "github.com/nfredmond/project-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveRolePermissions(t *testing.T) {
	tests := []struct {
		role model.TenantRole
		want RolePermissions
	}{
		{role: model.RoleAdmin, want: RolePermissions{CanEditProjects: true, CanInviteMembers: true, CanReviewCommunity: true}},
		{role: model.RoleManager, want: RolePermissions{CanEditProjects: true, CanInviteMembers: true, CanReviewCommunity: true}},
		{role: model.RoleStaff, want: RolePermissions{CanEditProjects: true, CanReviewCommunity: true}},
		{role: model.RoleViewer, want: RolePermissions{}},
		{role: "", want: RolePermissions{}},
		{role: "owner", want: RolePermissions{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveRolePermissions(tt.role))
		})
	}

	assert.True(t, ValidRole(model.RoleStaff))
	assert.False(t, ValidRole("owner"))
}

func TestActiveTenant(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	other := createTenant(t, db, "other", nil)
	member := addMember(t, db, tenant.ID, model.RoleStaff)

	got, role, err := svc.ActiveTenant(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
	assert.Equal(t, model.RoleStaff, role)

	t.Run("no profile", func(t *testing.T) {
		_, _, err := svc.ActiveTenant(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrTenantRequired)
	})

	t.Run("profile points at a tenant without membership", func(t *testing.T) {
		stranger := uuid.NewString()
		require.NoError(t, db.Create(&model.Profile{ID: stranger, CurrentTenant: &other.ID}).Error)
		_, _, err := svc.ActiveTenant(ctx, stranger)
		assert.ErrorIs(t, err, ErrTenantRequired)
	})

	t.Run("profile without current tenant", func(t *testing.T) {
		fresh := uuid.NewString()
		require.NoError(t, db.Create(&model.Profile{ID: fresh}).Error)
		_, _, err := svc.ActiveTenant(ctx, fresh)
		assert.ErrorIs(t, err, ErrTenantRequired)
	})
}

func TestSwitchTenant(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	first := createTenant(t, db, "first", nil)
	second := createTenant(t, db, "second", nil)
	outsider := createTenant(t, db, "outsider", nil)
	user := addMember(t, db, first.ID, model.RoleAdmin)
	require.NoError(t, db.Create(&model.TenantUser{TenantID: second.ID, UserID: user, Role: model.RoleViewer, Status: "active"}).Error)

	tests := []struct {
		name     string
		tenantID string
		wantErr  error
		wantRole model.TenantRole
	}{
		{name: "member tenant", tenantID: second.ID, wantRole: model.RoleViewer},
		{name: "non member", tenantID: outsider.ID, wantErr: ErrForbidden},
		{name: "blank", tenantID: " ", wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SwitchTenant(ctx, user, tt.tenantID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			active, role, err := svc.ActiveTenant(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, tt.tenantID, active.ID)
			assert.Equal(t, tt.wantRole, role)
		})
	}

	memberships, err := svc.ListMemberships(ctx, user)
	require.NoError(t, err)
	require.Len(t, memberships, 2)
	for _, m := range memberships {
		require.NotNil(t, m.Tenant)
		assert.Equal(t, m.TenantID, m.Tenant.ID)
	}
}

func TestSwitchTenant_CreatesMissingProfile(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	user := uuid.NewString()
	require.NoError(t, db.Create(&model.TenantUser{TenantID: tenant.ID, UserID: user, Role: model.RoleStaff, Status: "active"}).Error)

	require.NoError(t, svc.SwitchTenant(ctx, user, tenant.ID))

	profile, err := svc.GetProfile(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, profile.CurrentTenant)
	assert.Equal(t, tenant.ID, *profile.CurrentTenant)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	user := addMember(t, db, tenant.ID, model.RoleStaff)

	profile, err := svc.UpdateProfile(ctx, user, ProfileInput{FullName: ptr("  Dana Reyes "), Title: ptr("Planner")})
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", *profile.FullName)
	assert.Equal(t, "Planner", *profile.Title)
	assert.Nil(t, profile.Phone)

	profile, err = svc.UpdateProfile(ctx, user, ProfileInput{Title: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, profile.Title)
	assert.Equal(t, "Dana Reyes", *profile.FullName)

	_, err = svc.UpdateProfile(ctx, uuid.NewString(), ProfileInput{FullName: ptr("Ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTenantSettings(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		role      model.TenantRole
		in        TenantSettingsInput
		wantErr   error
		assertion func(t *testing.T, tenant *model.Tenant)
	}{
		{
			name: "manager updates name and timezone",
			role: model.RoleManager,
			in:   TenantSettingsInput{Name: ptr("Sierra MPO"), Timezone: ptr("America/Denver"), EnablePublicPortal: true},
			assertion: func(t *testing.T, tenant *model.Tenant) {
				assert.Equal(t, "Sierra MPO", tenant.Name)
				require.NotNil(t, tenant.Timezone)
				assert.Equal(t, "America/Denver", *tenant.Timezone)

				var branding map[string]any
				require.NoError(t, json.Unmarshal(tenant.Branding, &branding))
				assert.Equal(t, "#2563eb", branding["accent"])
				assert.Nil(t, branding["logo_url"])

				var settings map[string]any
				require.NoError(t, json.Unmarshal(tenant.Settings, &settings))
				assert.Equal(t, true, settings["enable_public_portal"])
				assert.Equal(t, "overview", settings["default_dashboard"])
			},
		},
		{
			name: "blank name keeps the current one",
			role: model.RoleAdmin,
			in:   TenantSettingsInput{Name: ptr("  "), Accent: ptr("#ff0000")},
			assertion: func(t *testing.T, tenant *model.Tenant) {
				assert.Equal(t, "Agency demo", tenant.Name)
				var branding map[string]any
				require.NoError(t, json.Unmarshal(tenant.Branding, &branding))
				assert.Equal(t, "#ff0000", branding["accent"])
			},
		},
		{
			name:    "staff cannot change settings",
			role:    model.RoleStaff,
			in:      TenantSettingsInput{Name: ptr("Nope")},
			wantErr: ErrForbidden,
		},
		{
			name:    "unknown timezone",
			role:    model.RoleAdmin,
			in:      TenantSettingsInput{Timezone: ptr("Mars/Olympus")},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db, _ := newTestService(t)
			tenant := createTenant(t, db, "demo", nil)

			updated, err := svc.UpdateTenantSettings(ctx, tenant, tt.role, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.assertion(t, updated)
		})
	}
}

func TestInvitations(t *testing.T) {
	ctx := context.Background()
	patches := gomonkey.ApplyGlobalVar(&timeNow, func() time.Time { return fixedNow })
	defer patches.Reset()

	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)

	_, err := svc.CreateInvitation(ctx, tenant, model.RoleStaff, InvitationInput{Email: "new@example.org"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateInvitation(ctx, tenant, model.RoleAdmin, InvitationInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateInvitation(ctx, tenant, model.RoleAdmin, InvitationInput{Email: "new@example.org", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	result, err := svc.CreateInvitation(ctx, tenant, model.RoleManager, InvitationInput{Email: " new@example.org ", Role: model.RoleStaff})
	require.NoError(t, err)
	assert.Regexp(t, `^https://pm\.example\.org/invite/[0-9a-f-]{36}$`, result.InviteURL)
	assert.True(t, result.ExpiresAt.Equal(fixedNow.Add(7*24*time.Hour)))

	var invite model.TenantInvitation
	require.NoError(t, db.First(&invite).Error)
	assert.Equal(t, "new@example.org", invite.Email)

	user := uuid.NewString()
	accepted, err := svc.AcceptInvitation(ctx, user, invite.Token)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, accepted.ID)

	active, role, err := svc.ActiveTenant(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, active.ID)
	assert.Equal(t, model.RoleStaff, role)

	_, err = svc.AcceptInvitation(ctx, user, invite.Token)
	assert.ErrorIs(t, err, ErrNotFound, "invitations are single use")

	_, err = svc.AcceptInvitation(ctx, user, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAcceptInvitation_Expired(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	patches := gomonkey.ApplyGlobalVar(&timeNow, func() time.Time { return now })
	defer patches.Reset()

	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	_, err := svc.CreateInvitation(ctx, tenant, model.RoleAdmin, InvitationInput{Email: "late@example.org"})
	require.NoError(t, err)

	var invite model.TenantInvitation
	require.NoError(t, db.First(&invite).Error)

	now = fixedNow.Add(8 * 24 * time.Hour)
	_, err = svc.AcceptInvitation(ctx, uuid.NewString(), invite.Token)
	assert.ErrorIs(t, err, ErrInvitationExpired)

	var count int64
	require.NoError(t, db.Model(&model.TenantUser{}).Count(&count).Error)
	assert.Zero(t, count)
}
