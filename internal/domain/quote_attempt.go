package domain

import (
	"errors"
	"fmt"
)

// AttemptState is a step in answering one quote request
type AttemptState int

const (
	StateAttempted AttemptState = iota
	StateRetriedZipOnly
	StateSucceeded
	StateFallbackServed
	StateFailed
)

func (s AttemptState) String() string {
	switch s {
	case StateAttempted:
		return "attempted"
	case StateRetriedZipOnly:
		return "retried_zip_only"
	case StateSucceeded:
		return "succeeded"
	case StateFallbackServed:
		return "fallback_served"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned for a move the state machine forbids,
// including a second retry
var ErrInvalidTransition = errors.New("invalid quote attempt transition")

var allowedTransitions = map[AttemptState][]AttemptState{
	StateAttempted:      {StateRetriedZipOnly, StateSucceeded, StateFailed},
	StateRetriedZipOnly: {StateSucceeded, StateFallbackServed, StateFailed},
}

// QuoteAttempt tracks the primary call and the single ZIP-only retry
type QuoteAttempt struct {
	state    AttemptState
	Primary  *CarrierResponse
	Retry    *CarrierResponse
	RetryErr error
}

// NewQuoteAttempt starts tracking a request whose primary call returned primary
func NewQuoteAttempt(primary *CarrierResponse) *QuoteAttempt {
	return &QuoteAttempt{state: StateAttempted, Primary: primary}
}

// State returns the current state
func (a *QuoteAttempt) State() AttemptState {
	return a.state
}

// RetryAttempted reports whether the ZIP-only retry was made
func (a *QuoteAttempt) RetryAttempted() bool {
	return a.Retry != nil || a.RetryErr != nil
}

// BeginZipOnlyRetry moves to RetriedZipOnly. It succeeds at most once.
func (a *QuoteAttempt) BeginZipOnlyRetry() error {
	return a.transition(StateRetriedZipOnly)
}

// RecordRetry stores the retry outcome. It is only valid after BeginZipOnlyRetry.
func (a *QuoteAttempt) RecordRetry(resp *CarrierResponse, err error) error {
	if a.state != StateRetriedZipOnly || a.RetryAttempted() {
		return fmt.Errorf("%w: retry recorded in state %s", ErrInvalidTransition, a.state)
	}
	a.Retry = resp
	a.RetryErr = err
	if resp == nil && err == nil {
		a.RetryErr = errors.New("retry produced no response")
	}
	return nil
}

// Succeed marks the request answered by the carrier
func (a *QuoteAttempt) Succeed() error {
	return a.transition(StateSucceeded)
}

// ServeFallback marks the request answered from the cache
func (a *QuoteAttempt) ServeFallback() error {
	return a.transition(StateFallbackServed)
}

// Fail marks the request unanswered
func (a *QuoteAttempt) Fail() error {
	return a.transition(StateFailed)
}

func (a *QuoteAttempt) transition(to AttemptState) error {
	for _, next := range allowedTransitions[a.state] {
		if next == to {
			a.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.state, to)
}
