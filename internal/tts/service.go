package tts

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
)

// Service synthesizes notification text to speech: sanitize, select a
// voice preset by priority, try each provider in the fallback chain in
// order (skipping any currently backed off), and cache the result.
type Service struct {
	providers []Provider
	backoff   time.Duration
	cache     *cache
	log       zerolog.Logger

	mu        sync.Mutex
	failedAt  map[string]time.Time // provider name -> last failure time
}

// NewService builds the synthesis service. providers are tried in the
// given order; backoff is how long a failing provider is skipped before
// being retried.
func NewService(providers []Provider, cacheMaxEntries int, backoff time.Duration, log zerolog.Logger) *Service {
	return &Service{
		providers: providers,
		backoff:   backoff,
		cache:     newCache(cacheMaxEntries),
		log:       log.With().Str("component", "tts").Logger(),
		failedAt:  make(map[string]time.Time),
	}
}

// Synthesize produces speech audio for a notification's text at its
// priority-appropriate voice preset. Returns apperr.KindEmptyAfterSanitize
// if text has no speakable content, or apperr.KindSynthesisUnavailable if
// every provider in the chain failed or is backed off.
func (s *Service) Synthesize(ctx context.Context, text string, priority domain.Priority) (Audio, error) {
	clean, err := sanitize(text)
	if err != nil {
		return Audio{}, err
	}

	voice := presetFor(priority)
	key := cacheKey{voiceID: voice.VoiceID, preset: priority.String(), text: clean}

	// Cache lookup ignores which provider ultimately served it; the
	// content is functionally identical for callers.
	if audio, ok := s.cacheLookup(key); ok {
		return audio, nil
	}

	var lastErr error
	for _, p := range s.providers {
		if s.isBackedOff(p.Name()) {
			continue
		}

		audio, err := p.Synthesize(ctx, clean, voice)
		if err != nil {
			s.recordFailure(p.Name())
			s.log.Warn().Err(err).Str("synth_provider", p.Name()).Msg("tts provider failed, trying next")
			lastErr = err
			continue
		}

		s.clearFailure(p.Name())
		cacheKeyWithProvider := cacheKey{provider: p.Name(), voiceID: voice.VoiceID, preset: key.preset, text: clean}
		s.cache.put(cacheKeyWithProvider, audio)
		s.cache.put(key, audio)
		return audio, nil
	}

	if lastErr == nil {
		lastErr = apperr.New(apperr.KindSynthesisUnavailable, "no tts providers configured")
	}
	return Audio{}, apperr.Wrap(apperr.KindSynthesisUnavailable, "all tts providers unavailable", lastErr)
}

// ProviderNames lists the configured providers in fallback order, along
// with whether each is currently backed off.
func (s *Service) ProviderNames() []ProviderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ProviderStatus, len(s.providers))
	for i, p := range s.providers {
		at, backedOff := s.failedAt[p.Name()]
		out[i] = ProviderStatus{
			Name:      p.Name(),
			BackedOff: backedOff && time.Since(at) < s.backoff,
		}
	}
	return out
}

// ProviderStatus is one entry in the GET /voice/providers response.
type ProviderStatus struct {
	Name      string `json:"name"`
	BackedOff bool   `json:"backed_off"`
}

func (s *Service) cacheLookup(key cacheKey) (Audio, bool) {
	return s.cache.get(key)
}

func (s *Service) isBackedOff(provider string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.failedAt[provider]
	if !ok {
		return false
	}
	return time.Since(at) < s.backoff
}

func (s *Service) recordFailure(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedAt[provider] = time.Now()
}

func (s *Service) clearFailure(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failedAt, provider)
}
