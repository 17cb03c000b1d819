package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// timeNow is the wall clock used at service boundaries. Tests replace it.
var timeNow = time.Now

// AgencyService holds the tenant-scoped business logic for every module
// except document storage.
type AgencyService struct {
	db       *gorm.DB
	notifier Notifier
	metrics  *Metrics
	logger   *zap.Logger
	appURL   string
}

// NewAgencyService wires the service. notifier and metrics may be nil.
func NewAgencyService(db *gorm.DB, notifier Notifier, metrics *Metrics, logger *zap.Logger, appURL string) *AgencyService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgencyService{
		db:       db,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		appURL:   appURL,
	}
}

// scoped starts a query restricted to one tenant.
func (s *AgencyService) scoped(ctx context.Context, tenantID string) *gorm.DB {
	return s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
}

// updateScoped applies updates to a single row owned by the tenant and
// reports ErrNotFound when nothing matched.
func (s *AgencyService) updateScoped(ctx context.Context, model any, tenantID, id string, updates map[string]any) error {
	result := s.db.WithContext(ctx).Model(model).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
