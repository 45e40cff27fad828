package httpx

import (
	"net/http"

	apperrors "github.com/modhub/modhub-api/internal/errors"
)

// statusForError maps the application error taxonomy to HTTP status codes.
// Anything the taxonomy does not categorize is an internal error.
func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodeInsufficientTokens:
		return http.StatusPaymentRequired
	case apperrors.ErrCodeNotEntitled:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeStorageUnavailable, apperrors.ErrCodeTimeout, apperrors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError renders an application error as a JSON response, using the
// taxonomy code as the machine-readable error string. Internal errors get a
// generic message so backend details never leak to clients.
func WriteAppError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}

	body := errorBody{Error: string(code), Message: err.Error()}
	if status == http.StatusInternalServerError {
		body = errorBody{Error: string(apperrors.ErrCodeInternal), Message: "internal server error"}
	}
	WriteJSON(w, status, body)
}
