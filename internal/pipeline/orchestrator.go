package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/spewlabs/explainer/internal/logger"
	"github.com/spewlabs/explainer/internal/models"
	"github.com/spewlabs/explainer/internal/remote"
)

// minScriptLength is the floor below which a generated script is rejected
// as degenerate model output.
const minScriptLength = 50

// Orchestrator coordinates one video generation run. Each non-fork stage
// is a strict prerequisite for the next; the visuals and lipsync branches
// run concurrently between speech and assembly.
type Orchestrator struct {
	script  ScriptStage
	speech  SpeechStage
	visuals VisualsStage
	lipsync LipsyncStage
	media   Compositor
	workDir string
	log     logger.Logger
}

// NewOrchestrator creates an Orchestrator. All stages are required;
// log may be nil.
func NewOrchestrator(script ScriptStage, speech SpeechStage, vis VisualsStage, lipsync LipsyncStage, media Compositor, workDir string, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		script:  script,
		speech:  speech,
		visuals: vis,
		lipsync: lipsync,
		media:   media,
		workDir: workDir,
		log:     logger.OrNoOp(log),
	}
}

// GenerateVideo runs the full pipeline for one persona and query and
// returns the final composite video.
//
// A stage failure aborts the run with a per-stage error tag; no partial
// output is ever returned. The visuals and lipsync branches are pushed
// immediately after the transcript is available and joined only when both
// results are needed; a failure in either branch fails the whole run.
func (o *Orchestrator) GenerateVideo(ctx context.Context, persona models.Persona, query string) (remote.File, error) {
	runID := uuid.NewString()[:8]
	runDir := filepath.Join(o.workDir, "runs", runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	o.log.LogInfo(fmt.Sprintf("run %s: generating video for persona %q, query %q", runID, persona.Name, query))

	// Stage 1: script
	script, err := o.script.GenerateScript(ctx, query, persona.Name, persona.StylePrompt)
	if err != nil {
		return nil, models.NewStageError(models.StageScript, err)
	}
	if len(strings.TrimSpace(script)) < minScriptLength {
		return nil, models.NewStageError(models.StageScript,
			fmt.Errorf("generated script is invalid or too short (%d chars, need %d)", len(strings.TrimSpace(script)), minScriptLength))
	}
	o.log.LogInfo(fmt.Sprintf("run %s: script generated (%d chars)", runID, len(script)))

	// Stage 2: speech + transcript
	speech, err := o.speech.Synthesize(ctx, script, persona.TTSVoiceLink)
	if err != nil {
		return nil, models.NewStageError(models.StageSpeech, err)
	}
	if err := validateSpeechResult(speech); err != nil {
		return nil, models.NewStageError(models.StageSpeech, err)
	}
	o.log.LogInfo(fmt.Sprintf("run %s: speech synthesized, %d transcript segment(s)", runID, len(speech.Transcript.Segments)))

	// Stage 3: fork. Both branches are minutes long and independent, so
	// they are pushed back-to-back and joined below.
	o.log.LogInfo(fmt.Sprintf("run %s: forking visuals and lipsync branches", runID))
	visualsFuture := remote.Push(ctx, func(ctx context.Context) (remote.File, error) {
		return o.visuals.GenerateVisuals(ctx, speech.Transcript, runDir)
	})
	lipsyncFuture := remote.Push(ctx, func(ctx context.Context) (remote.File, error) {
		return o.lipsync.Lipsync(ctx, remote.NewLocalFile(persona.BaseVideo), remote.NewLocalFile(speech.AudioPath))
	})

	visualsFile, visualsErr := visualsFuture.Result()
	lipsyncFile, lipsyncErr := lipsyncFuture.Result()
	if visualsErr != nil {
		return nil, models.NewStageError(models.StageVisuals, visualsErr)
	}
	if lipsyncErr != nil {
		return nil, models.NewStageError(models.StageLipsync, lipsyncErr)
	}
	o.log.LogInfo(fmt.Sprintf("run %s: branches joined", runID))

	// Stage 4: final composite
	finalPath := filepath.Join(runDir, "final.mp4")
	if err := o.media.StackComposite(ctx, visualsFile.Path(), lipsyncFile.Path(), finalPath); err != nil {
		return nil, models.NewStageError(models.StageAssemble, err)
	}

	o.log.LogInfo(fmt.Sprintf("run %s: final video at %s", runID, finalPath))
	return remote.NewLocalFile(finalPath), nil
}

// validateSpeechResult enforces the speech-stage output contract: both
// the audio artifact and a non-empty transcript must be present.
func validateSpeechResult(r models.SpeechResult) error {
	if strings.TrimSpace(r.AudioPath) == "" {
		return fmt.Errorf("speech result is missing the audio artifact")
	}
	if len(r.Transcript.Segments) == 0 {
		return fmt.Errorf("speech result is missing the transcription")
	}
	return nil
}
