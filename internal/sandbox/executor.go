// Package sandbox runs generated scripts in an isolated process with a
// hard wall-clock timeout and verifies the expected artifact was produced.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result is the outcome of one sandboxed execution. A failed run carries
// the full captured error text so the repair loop can feed it back to the
// model verbatim.
type Result struct {
	Success      bool
	ErrorMessage string
}

// Executor runs script text through an external interpreter.
// Create once, use for every attempt; it holds no per-run state.
type Executor struct {
	// Interpreter is the path of the interpreter binary.
	// Defaults to "python3".
	Interpreter string

	// ScratchDir is where temporary script files are written.
	// Defaults to the system temp directory.
	ScratchDir string
}

// NewExecutor creates an Executor with default settings.
func NewExecutor() *Executor {
	return &Executor{Interpreter: "python3"}
}

// Execute writes script to a fresh temporary file, runs it through the
// interpreter, and waits for exit or timeout.
//
// Success requires both a zero exit code and a non-empty file at
// outputPath. A zero exit with a missing or empty artifact is a failure:
// generated code frequently "succeeds" without writing anything.
//
// The temporary script file is removed after the run regardless of
// outcome; removal failure is not fatal. A timeout is reported as a
// failure Result, never as an error.
func (e *Executor) Execute(ctx context.Context, script, outputPath string, timeout time.Duration) (Result, error) {
	if strings.TrimSpace(script) == "" {
		return Result{Success: false, ErrorMessage: "script is empty"}, nil
	}
	if outputPath == "" {
		return Result{}, errors.New("output path is required")
	}

	scriptFile, err := os.CreateTemp(e.ScratchDir, "segment-*.py")
	if err != nil {
		return Result{}, fmt.Errorf("create script file: %w", err)
	}
	scriptPath := scriptFile.Name()
	defer os.Remove(scriptPath) // best-effort

	if _, err := scriptFile.WriteString(script); err != nil {
		scriptFile.Close()
		return Result{}, fmt.Errorf("write script file: %w", err)
	}
	if err := scriptFile.Close(); err != nil {
		return Result{}, fmt.Errorf("close script file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interpreter := e.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}

	cmd := exec.CommandContext(runCtx, interpreter, scriptPath)
	output, runErr := cmd.CombinedOutput()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Result{
			Success:      false,
			ErrorMessage: fmt.Sprintf("execution timed out after %g seconds", timeout.Seconds()),
		}, nil
	}
	if runErr != nil {
		return Result{
			Success:      false,
			ErrorMessage: fmt.Sprintf("execution failed: %v\n%s", runErr, string(output)),
		}, nil
	}

	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() == 0 {
		return Result{
			Success:      false,
			ErrorMessage: fmt.Sprintf("script ran but produced no output file at %s\n%s", outputPath, string(output)),
		}, nil
	}

	return Result{Success: true}, nil
}
