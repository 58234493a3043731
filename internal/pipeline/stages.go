// Package pipeline drives the full explainer flow:
// script → speech+transcript → fork(visuals, lipsync) → join → composite.
package pipeline

import (
	"context"

	"github.com/spewlabs/explainer/internal/models"
	"github.com/spewlabs/explainer/internal/remote"
)

// ScriptStage writes the narration script for a query in a persona's
// style. Remote collaborator; internals out of scope.
type ScriptStage interface {
	GenerateScript(ctx context.Context, query, personaName, style string) (string, error)
}

// SpeechStage synthesizes the script and transcribes the result. The
// orchestrator rejects results missing the audio or the transcript.
type SpeechStage interface {
	Synthesize(ctx context.Context, scriptText, voiceLink string) (models.SpeechResult, error)
}

// LipsyncStage produces a lip-synced narrator video from a persona's base
// video and the synthesized audio.
type LipsyncStage interface {
	Lipsync(ctx context.Context, baseVideo, audio remote.File) (remote.File, error)
}

// VisualsStage renders the full visual track for a transcript inside the
// given scratch directory. Implemented in-process by Visuals.
type VisualsStage interface {
	GenerateVisuals(ctx context.Context, transcript models.Transcript, workDir string) (remote.File, error)
}

// Compositor builds the final vertical video from the visuals track and
// the lip-synced narrator clip.
type Compositor interface {
	StackComposite(ctx context.Context, visualsMP4, narratorMP4, outMP4 string) error
}
