package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
)

var requestStatuses = map[model.RequestStatus]bool{
	model.RequestOpen:       true,
	model.RequestInProgress: true,
	model.RequestFulfilled:  true,
	model.RequestClosed:     true,
}

type RecordsRequestInput struct {
	Requester  string              `json:"requester" binding:"required"`
	ProjectID  *string             `json:"project_id"`
	Contact    *string             `json:"contact"`
	Topic      *string             `json:"topic"`
	ReceivedOn *string             `json:"received_on"`
	DueOn      *string             `json:"due_on"`
	Status     model.RequestStatus `json:"status"`
	Notes      *string             `json:"notes"`
}

func (s *AgencyService) ListRecordsRequests(ctx context.Context, tenantID string) ([]model.RecordsRequest, error) {
	var requests []model.RecordsRequest
	if err := s.scoped(ctx, tenantID).Order("due_on asc").Find(&requests).Error; err != nil {
		s.logger.Error("failed to list records requests", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	return requests, nil
}

// CreateRecordsRequest logs a new request. received_on defaults to today.
func (s *AgencyService) CreateRecordsRequest(ctx context.Context, tenantID string, in RecordsRequestInput) (*model.RecordsRequest, error) {
	requester := strings.TrimSpace(in.Requester)
	if len([]rune(requester)) < 2 {
		return nil, invalid("requester is required")
	}
	status := in.Status
	if status == "" {
		status = model.RequestOpen
	}
	if !requestStatuses[status] {
		return nil, invalid("invalid status %q", status)
	}
	if err := errors.Join(
		validDate("received_on", in.ReceivedOn),
		validDate("due_on", in.DueOn),
	); err != nil {
		return nil, err
	}
	projectID := trimmedOrNil(in.ProjectID)
	if projectID != nil {
		if err := s.ensureProject(ctx, tenantID, *projectID); err != nil {
			return nil, err
		}
	}

	request := model.RecordsRequest{
		TenantID:   tenantID,
		ProjectID:  projectID,
		Requester:  requester,
		Contact:    trimmedOrNil(in.Contact),
		Topic:      trimmedOrNil(in.Topic),
		ReceivedOn: stringOr(in.ReceivedOn, timeNow().Format(time.DateOnly)),
		DueOn:      trimmedOrNil(in.DueOn),
		Status:     status,
		Notes:      trimmedOrNil(in.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("create records request: %w", err)
	}
	return &request, nil
}

func (s *AgencyService) UpdateRecordsRequestStatus(ctx context.Context, tenantID, requestID string, status model.RequestStatus) error {
	if !requestStatuses[status] {
		return invalid("invalid status %q", status)
	}
	return s.updateScoped(ctx, &model.RecordsRequest{}, tenantID, requestID, map[string]any{"status": status})
}
