package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/modhub/modhub-api/internal/errors"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.Validation("bad input"), http.StatusBadRequest},
		{"not authenticated", apperrors.NotAuthenticated("no session"), http.StatusUnauthorized},
		{"insufficient tokens", apperrors.InsufficientTokens("too poor"), http.StatusPaymentRequired},
		{"not entitled", apperrors.NotEntitled("lapsed"), http.StatusForbidden},
		{"not found", apperrors.NotFound("gone"), http.StatusNotFound},
		{"conflict", apperrors.Conflict("duplicate"), http.StatusConflict},
		{"storage unavailable", apperrors.StorageUnavailable("cookies off"), http.StatusServiceUnavailable},
		{"internal", apperrors.Internal("boom"), http.StatusInternalServerError},
		{"plain error", errors.New("anything"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestWriteAppError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteAppError(rec, apperrors.Wrap(errors.New("pq: connection refused"), apperrors.ErrCodeInternal, "query balance"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestWriteAppError_ExposesTaxonomyCode(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteAppError(rec, apperrors.NotEntitledf("module %s is suspended", "summarizer"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_entitled")
	assert.Contains(t, rec.Body.String(), "summarizer")
}
