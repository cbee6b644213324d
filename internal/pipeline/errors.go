package pipeline

import "errors"

// Sentinel errors returned by pipeline operations (§7).
var (
	ErrCovenantFailed   = errors.New("pipeline: code failed the covenant safety check")
	ErrBelowFloor       = errors.New("pipeline: composite score below the required floor")
	ErrCycleDetected     = errors.New("pipeline: lineage cycle detected")
	ErrInvalidTransition = errors.New("pipeline: candidate is not in a state that allows this transition")
	ErrHealExhausted    = errors.New("pipeline: heal attempts exhausted")
)
