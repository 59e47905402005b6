// Package errors provides the coded error type used across the bounty services and
// helpers for categorising failures returned to callers.
package errors

import (
	"context"
	"errors"
	"strings"
)

// IsRetryableError determines if the caller may retry the operation with a fresh read.
// Lost consumption races, vanished records, network faults and timeouts are retryable;
// validation failures and ledger rejections are not.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Check if context was cancelled - not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	for _, retryable := range retryableErrors {
		if errors.Is(err, retryable) {
			return true
		}
	}

	return false
}

var retryableErrors = []error{
	ErrStaleRecord,
	ErrRecordNotFound,
	ErrNetworkTimeout,
	ErrNetwork,
	ErrServiceUnavailable,
	ErrStorageUnavailable,
	ErrTimeout,
	New(ERR_NETWORK_CONNECTION_REFUSED, "connection refused"),
}

// IsPreconditionError reports whether err was produced before anything was submitted
// because the requested transition cannot be valid.
func IsPreconditionError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_INVALID_PRECONDITION, ERR_DUST_OUTPUT, ERR_INVALID_ARGUMENT:
			return true
		}
	}

	return false
}

// IsNetworkError determines if an error is network-related.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_NETWORK_ERROR,
			ERR_NETWORK_TIMEOUT,
			ERR_NETWORK_CONNECTION_REFUSED,
			ERR_NETWORK_INVALID_RESPONSE:
			return true
		}
	}

	errStr := strings.ToLower(err.Error())
	networkStrings := []string{
		"connection refused",
		"connection reset",
		"dial tcp",
		"no such host",
		"broken pipe",
	}

	for _, s := range networkStrings {
		if strings.Contains(errStr, s) {
			return true
		}
	}

	return false
}

// IsContextError determines if an error is related to context cancellation or deadline.
func IsContextError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var tErr *Error
	if As(err, &tErr) {
		if tErr.Code() == ERR_CONTEXT_CANCELED || tErr.Code() == ERR_CONTEXT {
			return true
		}
	}

	return false
}
