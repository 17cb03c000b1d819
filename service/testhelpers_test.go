package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	model "github.com/nfredmond/project-manager/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the full schema. One
// connection keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

type sentNotification struct {
	Title   string
	Message string
}

// recordingNotifier captures dispatched notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Dispatch(_ context.Context, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{Title: title, Message: message})
}

func (r *recordingNotifier) all() []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentNotification(nil), r.sent...)
}

func newTestService(t *testing.T) (*AgencyService, *gorm.DB, *recordingNotifier) {
	t.Helper()
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	return NewAgencyService(db, notifier, nil, zap.NewNop(), "https://pm.example.org/"), db, notifier
}

func createTenant(t *testing.T, db *gorm.DB, slug string, timezone *string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{Name: "Agency " + slug, Slug: slug, Timezone: timezone}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func createProject(t *testing.T, db *gorm.DB, tenantID, name string) *model.Project {
	t.Helper()
	project := &model.Project{TenantID: tenantID, Name: name, Status: model.ProjectActive}
	require.NoError(t, db.Create(project).Error)
	return project
}

// addMember creates a membership and makes the tenant the user's active one.
func addMember(t *testing.T, db *gorm.DB, tenantID string, role model.TenantRole) string {
	t.Helper()
	userID := uuid.NewString()
	require.NoError(t, db.Create(&model.TenantUser{TenantID: tenantID, UserID: userID, Role: role, Status: "active"}).Error)
	require.NoError(t, db.Create(&model.Profile{ID: userID, CurrentTenant: &tenantID}).Error)
	return userID
}
