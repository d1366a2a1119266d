package enrichment

import (
	"strings"

	"github.com/sentineldesk/signalhub/internal/domain"
)

var newsCriticalWords = []string{"hack", "exploit", "ban", "halted"}
var newsMediumWords = []string{"listing", "partnership", "upgrade"}

// ClassifyNewsPriority applies the keyword rules from spec §4.2's news
// poller contract: critical words promote to high, medium words to medium,
// everything else defaults to low.
func ClassifyNewsPriority(title, message string) domain.Priority {
	text := strings.ToLower(title + " " + message)
	for _, w := range newsCriticalWords {
		if strings.Contains(text, w) {
			return domain.PriorityHigh
		}
	}
	for _, w := range newsMediumWords {
		if strings.Contains(text, w) {
			return domain.PriorityMedium
		}
	}
	return domain.PriorityLow
}

// DefaultPriorityForType returns the fallback priority when no other
// heuristic determined one, keyed by notification type.
func DefaultPriorityForType(t domain.NotificationType) domain.Priority {
	switch t {
	case domain.NotificationRiskAlert:
		return domain.PriorityHigh
	case domain.NotificationTechnicalBreakout, domain.NotificationCombinedSignal:
		return domain.PriorityHigh
	case domain.NotificationSocialSurge:
		return domain.PriorityMedium
	case domain.NotificationNewsEvent:
		return domain.PriorityLow
	case domain.NotificationTradeExecuted, domain.NotificationUserActionRequired:
		return domain.PriorityMedium
	default:
		return domain.PriorityInfo
	}
}
