package tts

import (
	"context"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// VoiceParams are the synthesis parameters selected for a given priority.
type VoiceParams struct {
	VoiceID string
	Rate    float64 // speech rate multiplier, 1.0 is normal
	Pitch   float64 // pitch multiplier, 1.0 is normal
}

// presetFor returns the voice parameters for a priority: critical speech is
// faster and slightly higher-pitched to read as urgent, info is slower.
func presetFor(p domain.Priority) VoiceParams {
	switch p {
	case domain.PriorityCritical:
		return VoiceParams{VoiceID: "alert", Rate: 1.15, Pitch: 1.08}
	case domain.PriorityHigh:
		return VoiceParams{VoiceID: "alert", Rate: 1.05, Pitch: 1.0}
	case domain.PriorityMedium:
		return VoiceParams{VoiceID: "standard", Rate: 1.0, Pitch: 1.0}
	case domain.PriorityLow:
		return VoiceParams{VoiceID: "standard", Rate: 0.95, Pitch: 1.0}
	default:
		return VoiceParams{VoiceID: "standard", Rate: 0.9, Pitch: 1.0}
	}
}

// Audio is a synthesized utterance.
type Audio struct {
	Data        []byte
	ContentType string
}

// Provider synthesizes text to speech. Providers are tried in order by the
// fallback chain; each is independently responsible for its own request
// timeout.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, voice VoiceParams) (Audio, error)
}
