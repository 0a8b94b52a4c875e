// Package services implements the monitor's core: capturing job failures,
// announcing them in batches, and handling the chat interactions that retry,
// dismiss or audit them.
//
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into HTTP status codes or chat messages is performed by the
// handler layer and by the message builders in reports.go.
package services

import "errors"

var (
	// ErrJobFailed is returned by Monitor.CaptureOn when the wrapped job
	// returned an error or panicked. The failure has already been filed;
	// callers answer with a generic 500 and never echo the cause.
	ErrJobFailed = errors.New("job failed")

	// ErrUnsupportedInteraction is returned for interaction types the
	// orchestrator does not handle.
	ErrUnsupportedInteraction = errors.New("unsupported interaction type")

	// ErrMissingConfig is returned when a component is invoked without the
	// credentials or endpoints it needs.
	ErrMissingConfig = errors.New("missing configuration")

	// ErrUnknownJob is returned when a job name has no registered handler.
	ErrUnknownJob = errors.New("unknown job")
)
