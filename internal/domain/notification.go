// Package domain provides the core domain types shared across the
// notification pipeline: notifications, alerts, positions, and market data.
package domain

import "time"

// NotificationType classifies the origin and shape of a notification.
type NotificationType string

const (
	NotificationCombinedSignal    NotificationType = "combined_signal"
	NotificationTechnicalBreakout NotificationType = "technical_breakout"
	NotificationSocialSurge       NotificationType = "social_surge"
	NotificationNewsEvent         NotificationType = "news_event"
	NotificationRiskAlert         NotificationType = "risk_alert"
	NotificationSystemStatus      NotificationType = "system_status"
	NotificationTradeExecuted     NotificationType = "trade_executed"
	NotificationUserActionRequired NotificationType = "user_action_required"
)

// Priority defines delivery precedence. Higher values present first.
type Priority int

const (
	PriorityInfo Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String renders the priority in its wire form.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "info"
	}
}

// ParsePriority parses the wire form back into a Priority, defaulting to
// PriorityInfo for unrecognized input.
func ParsePriority(s string) Priority {
	switch s {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	case "low":
		return PriorityLow
	default:
		return PriorityInfo
	}
}

// MarshalJSON renders the priority as its wire string form.
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON parses the wire string form back into a Priority.
func (p *Priority) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*p = ParsePriority(s)
	return nil
}

// SummaryWordBudget is the max word count for summarized_message at this priority.
func (p Priority) SummaryWordBudget() int {
	switch p {
	case PriorityCritical:
		return 15
	case PriorityHigh:
		return 20
	case PriorityMedium:
		return 25
	default:
		return 30
	}
}

// Cooldown is the minimum time after a full presentation of this priority
// before a message of priority <= this one may start presenting.
func (p Priority) Cooldown() time.Duration {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 3 * time.Second
	case PriorityMedium:
		return 5 * time.Second
	case PriorityLow:
		return 8 * time.Second
	default:
		return 10 * time.Second
	}
}

// Source identifies the producer of a notification.
type Source string

const (
	SourceTechnical Source = "technical"
	SourceTwitter   Source = "twitter"
	SourceNews      Source = "news"
	SourceCombined  Source = "combined"
	SourceSystem    Source = "system"
	SourceUser      Source = "user"
)

// Action is a closed-set quick-action token attached to a notification.
type Action string

const (
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionDismiss       Action = "dismiss"
	ActionClosePosition Action = "close_position"
)

// ValidActions is the closed set of accepted action tokens; unknown tokens
// are rejected at validation per the no-runtime-code-generation design note.
var ValidActions = map[Action]struct{}{
	ActionApprove:       {},
	ActionReject:        {},
	ActionDismiss:       {},
	ActionClosePosition: {},
}

// IsValidAction reports whether token is one of the closed set of actions.
func IsValidAction(token string) bool {
	_, ok := ValidActions[Action(token)]
	return ok
}

// Notification is immutable once appended to the store, except for the
// status fields (read, responded, response_action).
type Notification struct {
	ID                string           `json:"id"`
	Type              NotificationType `json:"type"`
	Priority          Priority         `json:"priority"`
	Source            Source           `json:"source"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	SummarizedMessage *string          `json:"summarized_message,omitempty"`
	Symbol            *string          `json:"symbol,omitempty"`
	ConfidenceScore   *float64         `json:"confidence_score,omitempty"`
	UrgencyScore      *float64         `json:"urgency_score,omitempty"`
	PromiseScore      *float64         `json:"promise_score,omitempty"`
	Metadata          map[string]any   `json:"metadata,omitempty"`
	Actions           []Action         `json:"actions,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	Read              bool             `json:"read"`
	Responded         bool             `json:"responded"`
	ResponseAction    *string          `json:"response_action,omitempty"`
	DedupKey          string           `json:"dedup_key"`
}

// Draft is the caller-supplied shape used to construct a new Notification
// via Enrichment or a direct POST /notifications call.
type Draft struct {
	Type       NotificationType
	Priority   *Priority // nil means "let enrichment decide"
	Source     Source
	Title      string
	Message    string
	Symbol     *string
	Metadata   map[string]any
	Actions    []Action
	ExternalID string // used to derive dedup_key alongside Source
}
