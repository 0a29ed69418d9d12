package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteAttemptAllowsOnlyOneRetry(t *testing.T) {
	attempt := NewQuoteAttempt(&CarrierResponse{Status: 422})

	require.NoError(t, attempt.BeginZipOnlyRetry())
	require.NoError(t, attempt.RecordRetry(&CarrierResponse{Status: 422}, nil))
	assert.True(t, attempt.RetryAttempted())

	err := attempt.BeginZipOnlyRetry()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, attempt.RecordRetry(&CarrierResponse{Status: 200}, nil), ErrInvalidTransition)
	assert.Equal(t, StateRetriedZipOnly, attempt.State())
}

func TestQuoteAttemptTransitions(t *testing.T) {
	tests := []struct {
		name    string
		steps   func(a *QuoteAttempt) error
		want    AttemptState
		wantErr bool
	}{
		{
			name:  "primary success",
			steps: func(a *QuoteAttempt) error { return a.Succeed() },
			want:  StateSucceeded,
		},
		{
			name: "retry success",
			steps: func(a *QuoteAttempt) error {
				_ = a.BeginZipOnlyRetry()
				return a.Succeed()
			},
			want: StateSucceeded,
		},
		{
			name: "fallback after retry",
			steps: func(a *QuoteAttempt) error {
				_ = a.BeginZipOnlyRetry()
				return a.ServeFallback()
			},
			want: StateFallbackServed,
		},
		{
			name:    "fallback without retry is forbidden",
			steps:   func(a *QuoteAttempt) error { return a.ServeFallback() },
			want:    StateAttempted,
			wantErr: true,
		},
		{
			name: "terminal states stay terminal",
			steps: func(a *QuoteAttempt) error {
				_ = a.Fail()
				return a.BeginZipOnlyRetry()
			},
			want:    StateFailed,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := NewQuoteAttempt(&CarrierResponse{Status: 200})
			err := tt.steps(attempt)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidTransition))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, attempt.State())
		})
	}
}

func TestRecordRetryWithoutResponse(t *testing.T) {
	attempt := NewQuoteAttempt(nil)
	require.NoError(t, attempt.BeginZipOnlyRetry())
	require.NoError(t, attempt.RecordRetry(nil, nil))
	assert.Error(t, attempt.RetryErr)
}
