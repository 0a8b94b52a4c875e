// Package handlers defines HTTP-layer error codes used across all endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses via fail(). Codes give callers (the scheduler, the chat platform's
// delivery logs, operators using the ops API) a stable, machine-readable
// taxonomy next to the human-readable message.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes mirror HTTP status semantics.
//   - Domain-specific codes name the monitor operation that failed.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_signature",
//	  "message": "invalid request signature"
//	}
//
// Monitored job failures are the one exception: they answer with the fixed
// JobFailureResponse body so nothing about the cause reaches the job's caller.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeInvalidSignature = "invalid_signature"
	ErrCodeMisconfigured    = "misconfigured"
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeUnknownJob       = "unknown_job"
	ErrCodeUnsupported      = "unsupported_interaction"
)
