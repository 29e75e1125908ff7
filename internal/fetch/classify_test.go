package fetch

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   Outcome
	}{
		{"ok", http.StatusOK, nil, OutcomeOK},
		{"created", http.StatusCreated, nil, OutcomeOK},
		{"forbidden", http.StatusForbidden, nil, OutcomeRetryable},
		{"rate limited", http.StatusTooManyRequests, nil, OutcomeRetryable},
		{"service unavailable", http.StatusServiceUnavailable, nil, OutcomeRetryable},
		{"not found", http.StatusNotFound, nil, OutcomeTerminal},
		{"server error", http.StatusInternalServerError, nil, OutcomeTerminal},
		{"transport error", 0, errors.New("connection refused"), OutcomeRetryable},
		{"transport error with status", http.StatusOK, errors.New("timeout"), OutcomeRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.status, tt.err))
		})
	}
}
