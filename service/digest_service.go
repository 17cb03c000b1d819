package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
)

// DigestLimit is how many of the top-ranked items a digest lists.
const DigestLimit = 5

const noDeadlineLabel = "No deadline"

// Digest is the rendered action center summary for one tenant.
type Digest struct {
	Title   string
	Message string
	Totals  SeverityTotals
	Lines   []string
}

// DigestResult is returned by the digest endpoint and CLI.
type DigestResult struct {
	Sent    bool           `json:"sent"`
	Tenant  string         `json:"tenant"`
	Totals  SeverityTotals `json:"totals"`
	Preview string         `json:"preview"`
	Items   int            `json:"items"`
}

// BuildDigest renders the severity totals and the first limit items as
// bullet lines. Due dates are formatted in loc.
func BuildDigest(tenantName string, items []model.ActionItem, limit int, loc *time.Location) Digest {
	totals := CountBySeverity(items)

	top := items
	if len(top) > limit {
		top = top[:limit]
	}
	lines := make([]string, 0, len(top))
	for _, item := range top {
		due := noDeadlineLabel
		if item.DueDate != nil && strings.TrimSpace(*item.DueDate) != "" {
			due = FormatDueDate(item.DueDate, loc)
		}
		lines = append(lines, fmt.Sprintf("• %s – %s (%s, %s)",
			item.Type.Label(), item.Title, item.Severity.Label(), due))
	}

	body := "No tracked deadlines at the moment."
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	message := strings.Join([]string{
		fmt.Sprintf("Overdue: %d | Due soon: %d | Planned: %d", totals.Overdue, totals.Soon, totals.Normal),
		"",
		body,
	}, "\n")

	return Digest{
		Title:   "Action center digest – " + tenantName,
		Message: message,
		Totals:  totals,
		Lines:   lines,
	}
}

// FormatDueDate renders a due date as "Jan 2, 2006", or "—" when it cannot
// be parsed.
func FormatDueDate(due *string, loc *time.Location) string {
	t, ok := parseDueDate(due, loc)
	if !ok {
		return "—"
	}
	return t.Format("Jan 2, 2006")
}

// SendDigest builds the digest for the tenant with the given slug and, unless
// preview is set, dispatches it through the notifier.
func (s *AgencyService) SendDigest(ctx context.Context, slug string, preview bool) (*DigestResult, error) {
	tenant, err := s.GetTenantBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	items, err := s.ActionCenter(ctx, tenant)
	if err != nil {
		return nil, err
	}

	digest := BuildDigest(tenant.Name, items, DigestLimit, tenant.Location())
	if !preview {
		s.notifier.Dispatch(ctx, digest.Title, digest.Message)
	}
	s.logger.Info("action center digest built",
		zap.String("tenant", tenant.Slug),
		zap.Bool("sent", !preview),
		zap.Int("items", len(items)),
	)

	return &DigestResult{
		Sent:    !preview,
		Tenant:  tenant.Slug,
		Totals:  digest.Totals,
		Preview: digest.Message,
		Items:   len(digest.Lines),
	}, nil
}
