package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
)

const defaultMeetingStatus = "scheduled"

var meetingTypes = map[model.MeetingType]bool{
	model.MeetingBoard:     true,
	model.MeetingCouncil:   true,
	model.MeetingCommunity: true,
	model.MeetingInternal:  true,
	model.MeetingTaskForce: true,
}

type MeetingInput struct {
	Title       string            `json:"title" binding:"required"`
	ProjectID   *string           `json:"project_id"`
	MeetingType model.MeetingType `json:"meeting_type"`
	MeetingDate *string           `json:"meeting_date"`
	Location    *string           `json:"location"`
	Notes       *string           `json:"notes"`
	Status      *string           `json:"status"`
}

func (s *AgencyService) ListMeetings(ctx context.Context, tenantID string) ([]model.Meeting, error) {
	var meetings []model.Meeting
	if err := s.scoped(ctx, tenantID).Order("meeting_date asc").Find(&meetings).Error; err != nil {
		s.logger.Error("failed to list meetings", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	return meetings, nil
}

func (s *AgencyService) CreateMeeting(ctx context.Context, tenantID string, in MeetingInput) (*model.Meeting, error) {
	title := strings.TrimSpace(in.Title)
	if len([]rune(title)) < 2 {
		return nil, invalid("meeting title is required")
	}
	meetingType := in.MeetingType
	if meetingType == "" {
		meetingType = model.MeetingInternal
	}
	if !meetingTypes[meetingType] {
		return nil, invalid("invalid meeting type %q", meetingType)
	}
	if date := trimmedOrNil(in.MeetingDate); date != nil {
		if _, ok := parseDueDate(date, time.UTC); !ok {
			return nil, invalid("meeting_date must be a date or timestamp")
		}
	}
	projectID := trimmedOrNil(in.ProjectID)
	if projectID != nil {
		if err := s.ensureProject(ctx, tenantID, *projectID); err != nil {
			return nil, err
		}
	}

	status := stringOr(in.Status, defaultMeetingStatus)
	meeting := model.Meeting{
		TenantID:    tenantID,
		ProjectID:   projectID,
		Title:       title,
		MeetingType: meetingType,
		MeetingDate: trimmedOrNil(in.MeetingDate),
		Location:    trimmedOrNil(in.Location),
		Notes:       trimmedOrNil(in.Notes),
		Status:      &status,
	}
	if err := s.db.WithContext(ctx).Create(&meeting).Error; err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	return &meeting, nil
}

func (s *AgencyService) UpdateMeetingStatus(ctx context.Context, tenantID, meetingID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return invalid("status is required")
	}
	return s.updateScoped(ctx, &model.Meeting{}, tenantID, meetingID, map[string]any{"status": status})
}
