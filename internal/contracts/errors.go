package contracts

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a transient collaborator failure. A source that is
// unavailable simply waits for its next natural refresh; there are no
// within-cycle retries.
var ErrUnavailable = errors.New("unavailable")

// ErrNoSignalAvailable is a run-level fatal: all three sources failed in the
// same cycle.
var ErrNoSignalAvailable = errors.New("no signal source available")

// InvalidRawSignalError reports a raw value outside its source's declared
// domain. The orchestrator treats it as "source unavailable this cycle".
type InvalidRawSignalError struct {
	Kind   SourceKind
	Ticker Ticker
	Reason string
}

func (e *InvalidRawSignalError) Error() string {
	if e.Ticker == "" {
		return fmt.Sprintf("invalid raw signal from %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid raw signal from %s for %s: %s", e.Kind, e.Ticker, e.Reason)
}

// InsufficientSignalError reports that fusion had no usable weight for a
// ticker. The ticker is skipped for the cycle, not scored neutral.
type InsufficientSignalError struct {
	Ticker Ticker
}

func (e *InsufficientSignalError) Error() string {
	return fmt.Sprintf("insufficient signal for %s: no usable source weight", e.Ticker)
}

// OutOfRangeError reports a NormalizedSignal outside [-1,1]/[0,1] reaching
// fusion. This indicates an upstream normalization bug and is never clamped
// silently.
type OutOfRangeError struct {
	Kind       SourceKind
	Strength   float64
	Confidence float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("normalized signal out of range from %s: strength=%.4f confidence=%.4f",
		e.Kind, e.Strength, e.Confidence)
}
