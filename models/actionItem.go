package models

// ActionItemType names the module an action item was derived from.
type ActionItemType string

const (
	ActionPhase   ActionItemType = "phase"
	ActionGrant   ActionItemType = "grant"
	ActionMeeting ActionItemType = "meeting"
	ActionRecords ActionItemType = "records"
)

// Label is the display name used in digests and module cards.
func (t ActionItemType) Label() string {
	switch t {
	case ActionPhase:
		return "Caltrans LAPM"
	case ActionGrant:
		return "Grant"
	case ActionMeeting:
		return "Meeting"
	case ActionRecords:
		return "PRA"
	default:
		return string(t)
	}
}

// ActionSeverity is the urgency tier of an action item.
type ActionSeverity string

const (
	SeverityOverdue ActionSeverity = "overdue"
	SeveritySoon    ActionSeverity = "soon"
	SeverityNormal  ActionSeverity = "normal"
)

// Rank orders severities from most to least urgent.
func (s ActionSeverity) Rank() int {
	switch s {
	case SeverityOverdue:
		return 0
	case SeveritySoon:
		return 1
	default:
		return 2
	}
}

func (s ActionSeverity) Label() string {
	switch s {
	case SeverityOverdue:
		return "Overdue"
	case SeveritySoon:
		return "Due soon"
	default:
		return "Planned"
	}
}

// ActionItem is a deadline surfaced in the action center. It is computed on
// every request from phases, grants, meetings and records requests and is
// never stored.
type ActionItem struct {
	ID          string         `json:"id"`
	Type        ActionItemType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     *string        `json:"dueDate,omitempty"`
	Href        string         `json:"href"`
	Severity    ActionSeverity `json:"severity"`
}
