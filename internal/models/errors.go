package models

import (
	"errors"
	"fmt"
)

// Stage names used to tag pipeline-level failures.
const (
	StageScript   = "script"
	StageSpeech   = "speech"
	StageVisuals  = "visuals"
	StageLipsync  = "lipsync"
	StageAssemble = "assemble"
)

// Sentinel errors for the error taxonomy. Failures inside a bounded
// retry/fallback chain are folded locally; only these join-breaking
// conditions propagate to the pipeline boundary.
var (
	// ErrGenerationFailed indicates the code-generating model returned
	// empty or unusable output. Not retried within an attempt.
	ErrGenerationFailed = errors.New("model returned unusable output")

	// ErrLoopExhausted indicates the repair loop spent its full attempt
	// budget without producing an artifact.
	ErrLoopExhausted = errors.New("attempt budget exhausted")

	// ErrNoSegments indicates assembly had zero survivable segments.
	ErrNoSegments = errors.New("no usable segments to assemble")
)

// StageError tags a pipeline failure with the stage that produced it.
// The orchestrator aborts the run on any StageError; no partial output
// is returned past the pipeline boundary.
type StageError struct {
	Stage string // One of the Stage* constants
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with a stage tag.
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
