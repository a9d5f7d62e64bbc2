package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"server", NewServer(errors.New("boom")), http.StatusInternalServerError, "Internal server error"},
		{"invalid format default", NewInvalidFormat(), http.StatusBadRequest, "Invalid request body"},
		{"invalid format custom", NewInvalidFormat("bad json"), http.StatusBadRequest, "bad json"},
		{"not found", NewNotFound("Endpoint not found"), http.StatusNotFound, "Endpoint not found"},
		{"method", NewMethodNotAllowed(), http.StatusMethodNotAllowed, "Method not allowed"},
		{"maintenance", NewUnavailable(), http.StatusServiceUnavailable, "Service is under maintenance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gerr *Error
			require.ErrorAs(t, tt.err, &gerr)
			require.Equal(t, tt.status, gerr.StatusCode())
			require.Equal(t, tt.msg, gerr.Msg())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("db down")
	err := NewServer(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "db down", err.Error())
	require.ErrorIs(t, NewNotFound("x"), ErrNotFound)
}

func TestError_ErrorFallbacks(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Invalid request", (&Error{errType: TypeValidation}).Error())
	require.Equal(t, "Internal error", (&Error{errType: TypeServer}).Error())
	require.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())
	require.Equal(t, "ERROR_TYPE_UNKNOWN", Type(99).String())
}
