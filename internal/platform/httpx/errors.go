// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/halcyon-edu/campus/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. The
// mapping is deterministic so route handlers never improvise status codes.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrPersistence):
		// Store failure details stay in the logs, not the response body.
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
