package visuals

import (
	"context"
	"fmt"
	"time"

	"github.com/spewlabs/explainer/internal/logger"
	"github.com/spewlabs/explainer/internal/models"
	"github.com/spewlabs/explainer/internal/sandbox"
)

// DefaultMaxAttempts caps sandbox executions per segment.
const DefaultMaxAttempts = 3

// errTruncateLen bounds error text in log lines. The full text still goes
// to the fix model.
const errTruncateLen = 300

// ScriptRunner is the sandbox surface the repair loop depends on.
type ScriptRunner interface {
	Execute(ctx context.Context, script, outputPath string, timeout time.Duration) (sandbox.Result, error)
}

// RepairLoop drives generate → execute → fix → execute for one segment,
// bounded by MaxAttempts total executions.
type RepairLoop struct {
	runner      ScriptRunner
	model       CodeModel
	maxAttempts int
	timeout     time.Duration
	log         logger.Logger
}

// NewRepairLoop creates a RepairLoop. maxAttempts values below 1 fall
// back to DefaultMaxAttempts. log may be nil.
func NewRepairLoop(runner ScriptRunner, model CodeModel, maxAttempts int, timeout time.Duration, log logger.Logger) *RepairLoop {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RepairLoop{
		runner:      runner,
		model:       model,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		log:         logger.OrNoOp(log),
	}
}

// Run generates code for the segment, executes it, and on failure feeds
// the captured error back to the model for a complete replacement script,
// up to the attempt budget.
//
// Returns the artifact path on success and "" on exhaustion, along with
// the full attempt chain for diagnostics. It never returns an error: all
// model and execution failures are folded into the failing attempt's
// outcome. Exhaustion never reuses a prior failing artifact.
func (l *RepairLoop) Run(ctx context.Context, segmentID string, spec models.VisualSegmentSpec, outputPath string) (string, []models.GenerationAttempt) {
	attempts := make([]models.GenerationAttempt, 0, l.maxAttempts)

	code, err := l.model.GenerateCode(ctx, spec.Description, spec.Duration())
	if err != nil {
		// Nothing to execute and nothing to fix: the chain ends here.
		attempts = append(attempts, models.GenerationAttempt{
			SegmentID:    segmentID,
			AttemptIndex: 1,
			Outcome:      models.OutcomeFailure,
			ErrorDetail:  fmt.Sprintf("code generation: %v", err),
		})
		l.log.LogWarn(fmt.Sprintf("segment %s attempt 1: code generation failed: %s", segmentID, truncateErr(err.Error())))
		return "", attempts
	}

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		script := sandbox.InjectOutputPath(code, outputPath)
		current := models.GenerationAttempt{
			SegmentID:    segmentID,
			Code:         script,
			AttemptIndex: attempt,
			Outcome:      models.OutcomePending,
		}

		result, execErr := l.runner.Execute(ctx, script, outputPath, l.timeout)
		if execErr != nil {
			result = sandbox.Result{Success: false, ErrorMessage: execErr.Error()}
		}

		if result.Success {
			current.Outcome = models.OutcomeSuccess
			attempts = append(attempts, current)
			l.log.LogInfo(fmt.Sprintf("segment %s attempt %d: success", segmentID, attempt))
			return outputPath, attempts
		}

		current.Outcome = models.OutcomeFailure
		current.ErrorDetail = result.ErrorMessage
		attempts = append(attempts, current)
		l.log.LogWarn(fmt.Sprintf("segment %s attempt %d/%d failed: %s",
			segmentID, attempt, l.maxAttempts, truncateErr(result.ErrorMessage)))

		if attempt == l.maxAttempts {
			break
		}

		fixed, fixErr := l.model.FixCode(ctx, spec.Description, code, result.ErrorMessage)
		if fixErr != nil {
			l.log.LogWarn(fmt.Sprintf("segment %s attempt %d: fix request failed: %s",
				segmentID, attempt, truncateErr(fixErr.Error())))
			break
		}
		code = fixed
	}

	l.log.LogWarn(fmt.Sprintf("segment %s: attempt budget exhausted after %d attempt(s)", segmentID, len(attempts)))
	return "", attempts
}

func truncateErr(s string) string {
	r := []rune(s)
	if len(r) <= errTruncateLen {
		return s
	}
	return string(r[:errTruncateLen]) + "..."
}
