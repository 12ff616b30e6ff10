/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package recovery classifies provider failures and tracks per-resource
// failure streaks so permanently failing resources are retried with backoff
// instead of on every cycle.
package recovery

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/smithy-go"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrorClassification categorizes errors for recovery decisions.
type ErrorClassification string

const (
	ErrorTransient ErrorClassification = "Transient"
	ErrorPermanent ErrorClassification = "Permanent"
	ErrorUnknown   ErrorClassification = "Unknown"
)

// ErrorRecoveryStrategy determines how to handle errors.
type ErrorRecoveryStrategy struct {
	ShouldRetry    bool
	RetryAfter     time.Duration
	Classification ErrorClassification
	Reason         string
}

// transientAWSErrorCodes contains AWS error codes that indicate transient failures.
var transientAWSErrorCodes = map[string]bool{
	"Throttling":                             true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"ServiceUnavailable":                     true,
	"ServiceUnavailableException":            true,
	"InternalError":                          true,
	"InternalFailure":                        true,
	"RequestTimeout":                         true,
	"ProvisionedThroughputExceededException": true,
	"ScalingActivityInProgress":              true,
	"ResourceInUse":                          true,
	"ResourceInUseException":                 true,
	"IncorrectInstanceState":                 true,
	"InvalidDBInstanceState":                 true,
}

// permanentAWSErrorCodes contains AWS error codes that indicate permanent failures.
var permanentAWSErrorCodes = map[string]bool{
	"ResourceNotFoundException":      true,
	"ValidationError":                true,
	"ValidationException":            true,
	"InvalidParameterException":      true,
	"InvalidParameterValue":          true,
	"AccessDeniedException":          true,
	"AccessDenied":                   true,
	"UnauthorizedOperation":          true,
	"UnauthorizedException":          true,
	"ResourceAlreadyExistsException": true,
	"ClusterNotFoundException":       true,
	"ServiceNotFoundException":       true,
	"DBInstanceNotFound":             true,
	"InvalidInstanceID.NotFound":     true,
}

// ClassifyError determines if an error is transient or permanent.
// It first checks for AWS SDK and Kubernetes typed errors, then falls back to
// string matching.
func ClassifyError(err error) ErrorClassification {
	if err == nil {
		return ErrorUnknown
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if transientAWSErrorCodes[code] {
			return ErrorTransient
		}
		if permanentAWSErrorCodes[code] {
			return ErrorPermanent
		}
	}

	switch {
	case apierrors.IsConflict(err), apierrors.IsServerTimeout(err), apierrors.IsTooManyRequests(err),
		apierrors.IsServiceUnavailable(err), apierrors.IsInternalError(err), apierrors.IsTimeout(err):
		return ErrorTransient
	case apierrors.IsNotFound(err), apierrors.IsForbidden(err), apierrors.IsUnauthorized(err),
		apierrors.IsInvalid(err), apierrors.IsBadRequest(err):
		return ErrorPermanent
	}

	errMsg := strings.ToLower(err.Error())

	transientPatterns := []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
		"rate limit",
		"throttling",
		"service unavailable",
		"too many requests",
		"deadline exceeded",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return ErrorTransient
		}
	}

	permanentPatterns := []string{
		"not found", "already exists", "invalid",
		"forbidden", "unauthorized", "permission denied", "access denied",
	}

	for _, pattern := range permanentPatterns {
		if strings.Contains(errMsg, pattern) {
			return ErrorPermanent
		}
	}

	return ErrorUnknown
}

// FailureState is the failure streak of one resource.
type FailureState struct {
	// Count is the number of consecutive failed cycles.
	Count int32
	// LastFailure is when the most recent failure happened.
	LastFailure time.Time
	// Classification of the most recent failure.
	Classification ErrorClassification
	// LastError is the message of the most recent failure.
	LastError string
}

// DetermineRecoveryStrategy decides when a resource is tried again after a
// failure. Transient and unknown failures are retried on the next cycle;
// permanent failures back off exponentially.
func DetermineRecoveryStrategy(state FailureState, now time.Time) ErrorRecoveryStrategy {
	if state.Count == 0 {
		return ErrorRecoveryStrategy{ShouldRetry: true, Classification: ErrorUnknown, Reason: "no failures recorded"}
	}

	if state.Classification != ErrorPermanent {
		return ErrorRecoveryStrategy{
			ShouldRetry:    true,
			Classification: state.Classification,
			Reason:         fmt.Sprintf("retrying next cycle (failure %d)", state.Count),
		}
	}

	backoff := CalculateBackoff(state.Count - 1)
	if elapsed := now.Sub(state.LastFailure); elapsed < backoff {
		return ErrorRecoveryStrategy{
			ShouldRetry:    false,
			RetryAfter:     backoff - elapsed,
			Classification: state.Classification,
			Reason:         fmt.Sprintf("backing off after %d permanent failures", state.Count),
		}
	}

	return ErrorRecoveryStrategy{
		ShouldRetry:    true,
		Classification: state.Classification,
		Reason:         fmt.Sprintf("backoff elapsed (failure %d)", state.Count),
	}
}

// CalculateBackoff returns exponential backoff: min(60s * 2^attempt, 30m)
func CalculateBackoff(attempt int32) time.Duration {
	base := 60 * time.Second
	maxBackoff := 30 * time.Minute

	if attempt < 0 {
		attempt = 0
	}

	multiplier := int64(1)
	for i := int32(0); i < attempt; i++ {
		multiplier *= 2
		if time.Duration(multiplier)*base >= maxBackoff {
			return maxBackoff
		}
	}

	backoff := time.Duration(multiplier) * base
	if backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}

// Tracker keeps failure streaks keyed by resource.
type Tracker struct {
	mu     sync.Mutex
	states map[string]FailureState
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]FailureState)}
}

// RecordFailure extends the streak of key and returns the resulting strategy.
func (t *Tracker) RecordFailure(key string, err error, now time.Time) ErrorRecoveryStrategy {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.states[key]
	state.Count++
	state.LastFailure = now
	state.Classification = ClassifyError(err)
	if err != nil {
		state.LastError = err.Error()
	} else {
		state.LastError = "unknown error"
	}
	t.states[key] = state

	return DetermineRecoveryStrategy(state, now)
}

// RecordSuccess clears the streak of key.
func (t *Tracker) RecordSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, key)
}

// Strategy returns the current strategy for key.
func (t *Tracker) Strategy(key string, now time.Time) ErrorRecoveryStrategy {
	t.mu.Lock()
	defer t.mu.Unlock()
	return DetermineRecoveryStrategy(t.states[key], now)
}

// State returns the failure state of key.
func (t *Tracker) State(key string) (FailureState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[key]
	return s, ok
}
