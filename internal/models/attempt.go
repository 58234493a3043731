package models

// AttemptOutcome is the terminal classification of one generate/execute cycle.
type AttemptOutcome string

// Attempt outcome constants
const (
	OutcomePending AttemptOutcome = "pending" // Created, not yet executed
	OutcomeSuccess AttemptOutcome = "success" // Execution produced a usable artifact
	OutcomeFailure AttemptOutcome = "failure" // Generation or execution failed
)

// GenerationAttempt records one generate/execute cycle for a segment.
// Attempts form a linear chain per segment, capped at the loop's attempt
// budget; the chain terminates at the first success or when the budget is
// exhausted.
type GenerationAttempt struct {
	SegmentID    string         // Identifier of the segment being generated
	Code         string         // Full script text sent to the sandbox
	AttemptIndex int            // 1-based position in the chain
	Outcome      AttemptOutcome // pending, success, or failure
	ErrorDetail  string         // Captured error text on failure
}

// SegmentResult is the product of a successful generation (or fallback)
// for one segment. It is consumed by the assembler, after which the
// underlying artifact file may be deleted.
type SegmentResult struct {
	SegmentID    string      // Identifier of the source segment
	ArtifactPath string      // Local path of the rendered clip
	StartTime    float64     // Seconds, copied from the spec
	EndTime      float64     // Seconds, copied from the spec
	Duration     float64     // Seconds, EndTime - StartTime
	ProducedBy   SegmentKind // Which fallback tier actually produced the clip
}
