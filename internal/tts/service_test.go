package tts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/domain"
)

type failingProvider struct {
	name string
	err  error
}

func (f *failingProvider) Name() string { return f.name }
func (f *failingProvider) Synthesize(context.Context, string, VoiceParams) (Audio, error) {
	return Audio{}, f.err
}

type succeedingProvider struct {
	name  string
	calls int
}

func (s *succeedingProvider) Name() string { return s.name }
func (s *succeedingProvider) Synthesize(context.Context, string, VoiceParams) (Audio, error) {
	s.calls++
	return Audio{Data: []byte("ok"), ContentType: "audio/mpeg"}, nil
}

func TestService_FallsThroughChainToLocalFallback(t *testing.T) {
	premium := &failingProvider{name: "premium", err: errors.New("timeout")}
	polly := &failingProvider{name: "polly", err: errors.New("throttled")}
	fallback := NewFallbackProvider()

	svc := NewService([]Provider{premium, polly, fallback}, 10, time.Minute, zerolog.Nop())

	audio, err := svc.Synthesize(context.Background(), "BTC crossed 50000", domain.PriorityHigh)
	require.NoError(t, err)
	assert.NotEmpty(t, audio.Data)
}

func TestService_AllProvidersFailReturnsSynthesisUnavailable(t *testing.T) {
	premium := &failingProvider{name: "premium", err: errors.New("timeout")}
	polly := &failingProvider{name: "polly", err: errors.New("throttled")}

	svc := NewService([]Provider{premium, polly}, 10, time.Minute, zerolog.Nop())

	_, err := svc.Synthesize(context.Background(), "BTC crossed 50000", domain.PriorityHigh)
	require.Error(t, err)
	assert.Equal(t, apperr.KindSynthesisUnavailable, apperr.KindOf(err))
}

func TestService_BackedOffProviderIsSkipped(t *testing.T) {
	premium := &failingProvider{name: "premium", err: errors.New("timeout")}
	second := &succeedingProvider{name: "second"}

	svc := NewService([]Provider{premium, second}, 10, time.Hour, zerolog.Nop())

	_, err := svc.Synthesize(context.Background(), "first call fails over", domain.PriorityLow)
	require.NoError(t, err)
	assert.Equal(t, 1, second.calls)

	_, err = svc.Synthesize(context.Background(), "second call skips premium", domain.PriorityLow)
	require.NoError(t, err)
	assert.Equal(t, 2, second.calls, "premium should stay backed off and not be retried")
}

func TestService_EmptyAfterSanitizeNeverReachesProviders(t *testing.T) {
	called := &succeedingProvider{name: "should-not-run"}
	svc := NewService([]Provider{called}, 10, time.Minute, zerolog.Nop())

	_, err := svc.Synthesize(context.Background(), "#hash HASH", domain.PriorityMedium)
	require.Error(t, err)
	assert.Equal(t, apperr.KindEmptyAfterSanitize, apperr.KindOf(err))
	assert.Equal(t, 0, called.calls)
}

func TestService_CacheHitAvoidsSecondProviderCall(t *testing.T) {
	p := &succeedingProvider{name: "premium"}
	svc := NewService([]Provider{p}, 10, time.Minute, zerolog.Nop())

	text := "ETH crossed 3000"
	_, err := svc.Synthesize(context.Background(), text, domain.PriorityMedium)
	require.NoError(t, err)
	_, err = svc.Synthesize(context.Background(), text, domain.PriorityMedium)
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls, "second identical request should be served from cache")
}
