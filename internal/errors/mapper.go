package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/fanspark/discovery/internal/engine"
)

// Status converts engine/repo/infra errors into an HTTP status code.
// Keeps handlers clean by centralizing error mapping.
//
// Only errors that prevented a decision from being durably committed map
// to failure statuses; the engine has already downgraded post-commit
// issues before they reach here.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, engine.ErrQuotaExceeded):
		return http.StatusTooManyRequests

	case errors.Is(err, engine.ErrDecisionInFlight):
		return http.StatusConflict

	case errors.Is(err, engine.ErrExhausted),
		errors.Is(err, engine.ErrNothingToRewind),
		errors.Is(err, engine.ErrGestureNotRecognized):
		return http.StatusUnprocessableEntity

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable

	default:
		var be *engine.BackendError
		if errors.As(err, &be) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}
