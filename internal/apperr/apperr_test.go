package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ErrorMessageAndCode(t *testing.T) {
	err := New(KindInvalidInput, "symbol is required")
	require.Equal(t, "invalid_input: symbol is required", err.Error())
	require.Equal(t, "invalid_input", err.ErrorCode())
	require.Nil(t, err.Unwrap())
}

func TestWrap_IncludesCauseInMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindUpstreamUnavailable, "failed to reach exchange", cause)
	require.Equal(t, "upstream_unavailable: failed to reach exchange: connection refused", err.Error())
	require.Equal(t, cause, err.Unwrap())
}

func TestWithDetails_AttachesAndReturnsReceiver(t *testing.T) {
	err := New(KindInvalidInput, "bad amount").WithDetails(map[string]any{"field": "amount"})
	require.Equal(t, "amount", err.Details["field"])
}

func TestIs_MatchesWrappedKind(t *testing.T) {
	err := New(KindNotFound, "no such alert")
	wrapped := fmt.Errorf("loading alert: %w", err)

	require.True(t, Is(wrapped, KindNotFound))
	require.False(t, Is(wrapped, KindInvalidInput))
	require.False(t, Is(errors.New("plain error"), KindNotFound))
}

func TestKindOf_DefaultsToInternalForUntypedErrors(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.Equal(t, KindRateLimited, KindOf(New(KindRateLimited, "slow down")))
}

func TestKindOf_UnwrapsThroughFmtErrorf(t *testing.T) {
	err := New(KindInsufficientBalance, "cannot cover order")
	wrapped := fmt.Errorf("opening position: %w", err)
	require.Equal(t, KindInsufficientBalance, KindOf(wrapped))
}
