package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// soonWindowDays is the inclusive number of calendar days ahead that counts
// as "due soon".
const soonWindowDays = 14

const (
	fallbackProjectName       = "Project"
	defaultPhaseDescription   = "LAPM phase deadline"
	defaultGrantDescription   = "Grant deadline"
	defaultMeetingDescription = "Location TBD"
	defaultRecordsDescription = "Public records request"
)

var actionHrefs = map[model.ActionItemType]string{
	model.ActionPhase:   "/caltrans",
	model.ActionGrant:   "/grants",
	model.ActionMeeting: "/meetings",
	model.ActionRecords: "/records-requests",
}

// dueDateLayouts are tried in order. Layouts without a zone are read in the
// caller's location.
var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05Z07",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ActionInputs holds one tenant's records for the action center. Callers
// are responsible for restricting every slice to a single tenant.
type ActionInputs struct {
	Projects []model.Project
	Phases   []model.CaltransPhase
	Grants   []model.Grant
	Meetings []model.Meeting
	Records  []model.RecordsRequest
}

type rankedItem struct {
	item   model.ActionItem
	due    time.Time
	hasDue bool
}

// BuildActionItems turns phases, grants, meetings and records requests into
// one list ranked by severity and then by due date. Items without a usable
// due date sort last within their severity, and ties keep input order.
// Calendar days are counted in now's location.
func BuildActionItems(in ActionInputs, now time.Time) []model.ActionItem {
	projectNames := make(map[string]string, len(in.Projects))
	for _, p := range in.Projects {
		projectNames[p.ID] = p.Name
	}

	ranked := make([]rankedItem, 0, len(in.Phases)+len(in.Grants)+len(in.Meetings)+len(in.Records))
	add := func(item model.ActionItem) {
		due, ok := parseDueDate(item.DueDate, now.Location())
		item.Href = actionHrefs[item.Type]
		item.Severity = severityFor(due, ok, now)
		ranked = append(ranked, rankedItem{item: item, due: due, hasDue: ok})
	}

	for _, phase := range in.Phases {
		name, ok := projectNames[phase.ProjectID]
		if !ok {
			name = fallbackProjectName
		}
		add(model.ActionItem{
			ID:          phase.ID,
			Type:        model.ActionPhase,
			Title:       fmt.Sprintf("%s · %s", name, phase.Phase),
			Description: defaultPhaseDescription,
			DueDate:     calendarDate(phase.PedDueDate),
		})
	}
	for _, grant := range in.Grants {
		add(model.ActionItem{
			ID:          grant.ID,
			Type:        model.ActionGrant,
			Title:       grant.Name,
			Description: valueOr(grant.Summary, defaultGrantDescription),
			DueDate:     calendarDate(grant.Deadline),
		})
	}
	for _, meeting := range in.Meetings {
		add(model.ActionItem{
			ID:          meeting.ID,
			Type:        model.ActionMeeting,
			Title:       meeting.Title,
			Description: valueOr(meeting.Location, defaultMeetingDescription),
			DueDate:     meeting.MeetingDate,
		})
	}
	for _, record := range in.Records {
		add(model.ActionItem{
			ID:          record.ID,
			Type:        model.ActionRecords,
			Title:       record.Requester,
			Description: valueOr(record.Topic, defaultRecordsDescription),
			DueDate:     calendarDate(record.DueOn),
		})
	}

	slices.SortStableFunc(ranked, compareRanked)

	items := make([]model.ActionItem, len(ranked))
	for i, r := range ranked {
		items[i] = r.item
	}
	return items
}

// DetermineSeverity classifies a nullable due date relative to now.
// Missing or unparsable dates are normal; a due date earlier today is still
// soon, not overdue. Bare dates are midnight in now's location and
// timestamps are converted into it.
func DetermineSeverity(dueDate *string, now time.Time) model.ActionSeverity {
	due, ok := parseDueDate(dueDate, now.Location())
	return severityFor(due, ok, now)
}

func severityFor(due time.Time, ok bool, now time.Time) model.ActionSeverity {
	if !ok {
		return model.SeverityNormal
	}
	days := calendarDaysBetween(now, due)
	switch {
	case days < 0:
		return model.SeverityOverdue
	case days <= soonWindowDays:
		return model.SeveritySoon
	default:
		return model.SeverityNormal
	}
}

// calendarDaysBetween counts midnights crossed going from `from` to `to`,
// using from's location for both.
func calendarDaysBetween(from, to time.Time) int {
	to = to.In(from.Location())
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func parseDueDate(raw *string, loc *time.Location) (time.Time, bool) {
	if raw == nil {
		return time.Time{}, false
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err != nil {
			continue
		}
		return t.In(loc), true
	}
	return time.Time{}, false
}

// calendarDate trims a date column value to YYYY-MM-DD. Drivers hand date
// columns back as UTC midnight timestamps, which would otherwise shift a day
// when converted into a zone west of UTC. Meeting times are real instants and
// must not pass through here.
func calendarDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if len(value) < len(time.DateOnly) {
		return raw
	}
	day := value[:len(time.DateOnly)]
	if _, err := time.Parse(time.DateOnly, day); err != nil {
		return raw
	}
	return &day
}

func compareRanked(a, b rankedItem) int {
	if d := a.item.Severity.Rank() - b.item.Severity.Rank(); d != 0 {
		return d
	}
	switch {
	case a.hasDue && b.hasDue:
		return a.due.Compare(b.due)
	case a.hasDue:
		return -1
	case b.hasDue:
		return 1
	}
	return 0
}

func valueOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

// SeverityTotals counts items per severity tier.
type SeverityTotals struct {
	Overdue int `json:"overdue"`
	Soon    int `json:"soon"`
	Normal  int `json:"normal"`
}

func (t *SeverityTotals) add(sev model.ActionSeverity) {
	switch sev {
	case model.SeverityOverdue:
		t.Overdue++
	case model.SeveritySoon:
		t.Soon++
	default:
		t.Normal++
	}
}

// CountBySeverity tallies items per severity.
func CountBySeverity(items []model.ActionItem) SeverityTotals {
	var totals SeverityTotals
	for _, item := range items {
		totals.add(item.Severity)
	}
	return totals
}

// CountByType tallies items per type and severity, for the per-module cards.
func CountByType(items []model.ActionItem) map[model.ActionItemType]SeverityTotals {
	out := map[model.ActionItemType]SeverityTotals{
		model.ActionPhase:   {},
		model.ActionGrant:   {},
		model.ActionMeeting: {},
		model.ActionRecords: {},
	}
	for _, item := range items {
		totals := out[item.Type]
		totals.add(item.Severity)
		out[item.Type] = totals
	}
	return out
}

// ActionCenter loads the tenant's deadline-bearing records in parallel and
// ranks them against the current time in the tenant's timezone.
func (s *AgencyService) ActionCenter(ctx context.Context, tenant *model.Tenant) ([]model.ActionItem, error) {
	in, err := s.fetchActionInputs(ctx, tenant.ID)
	if err != nil {
		s.logger.Error("failed to load action center data", zap.String("tenant_id", tenant.ID), zap.Error(err))
		return nil, err
	}

	items := BuildActionItems(in, timeNow().In(tenant.Location()))
	s.metrics.ObserveActionItems(items)
	s.logger.Debug("action center built",
		zap.String("tenant_id", tenant.ID),
		zap.Int("items", len(items)),
	)
	return items, nil
}

func (s *AgencyService) fetchActionInputs(ctx context.Context, tenantID string) (ActionInputs, error) {
	var in ActionInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.scoped(gctx, tenantID).Order("created_at desc").Find(&in.Projects).Error
	})
	g.Go(func() error {
		return s.scoped(gctx, tenantID).Order("created_at desc").Find(&in.Phases).Error
	})
	g.Go(func() error {
		return s.scoped(gctx, tenantID).Order("deadline asc").Find(&in.Grants).Error
	})
	g.Go(func() error {
		return s.scoped(gctx, tenantID).Order("meeting_date asc").Find(&in.Meetings).Error
	})
	g.Go(func() error {
		return s.scoped(gctx, tenantID).Order("received_on desc").Find(&in.Records).Error
	})

	if err := g.Wait(); err != nil {
		return ActionInputs{}, fmt.Errorf("fetch tenant data: %w", err)
	}
	return in, nil
}
