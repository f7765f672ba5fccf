package scheduler

import "errors"

// Sentinel errors surfaced by Config loading and other operations that
// return a Go error rather than the spec-mandated boolean control-API
// contract (see errors_reason.go for the internal reason taxonomy used
// by the boolean-returning control operations).
var (
	// ErrConfigInvalid is returned by Config.Validate when a capacity or
	// feature-toggle combination violates the construction-time constraints.
	ErrConfigInvalid = errors.New("scheduler: invalid configuration")

	// ErrAlreadyLooping is logged when StartLoop is invoked while already
	// looping; StartLoop itself treats this as a no-op, so this sentinel
	// is never returned.
	ErrAlreadyLooping = errors.New("scheduler: already looping")
)
