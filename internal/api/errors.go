package api

import (
	"encoding/json"
	"net/http"

	"github.com/sentineldesk/signalhub/internal/apperr"
)

// errorBody is the REST error shape from spec: {error_code, message, details?}.
type errorBody struct {
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// statusFor maps a typed error kind onto its REST status code.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInsufficientBalance:
		return http.StatusConflict
	case apperr.KindUpstreamUnavailable, apperr.KindSynthesisUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the typed JSON error body, inferring status
// from its apperr.Kind (KindInternal, or any non-typed error, becomes 500).
func writeError(w http.ResponseWriter, err error) {
	var details map[string]any
	var appErr *apperr.Error
	if ae, ok := err.(*apperr.Error); ok {
		appErr = ae
		details = ae.Details
	}

	kind := apperr.KindOf(err)
	status := statusFor(kind)

	body := errorBody{
		ErrorCode: string(kind),
		Message:   err.Error(),
		Details:   details,
	}
	if appErr != nil {
		body.Message = appErr.Message
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, "malformed request body", err)
	}
	return nil
}
