// Package stages implements the remote collaborators at the pipeline
// boundary: script writing, speech synthesis with transcription,
// lip-sync, and still-image generation.
package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/spewlabs/explainer/internal/llm"
)

const scriptSystemPrompt = "You are a brilliant writer who is capable of writing in the style of " +
	"any person or celebrity. You are given a query and a style prompt. You need to write an " +
	"explanation of the query in the style of the celebrity."

// ScriptWriter generates the narration script for a query in a persona's
// voice.
type ScriptWriter struct {
	model     llm.Generator
	modelName string
}

// NewScriptWriter creates a ScriptWriter using modelName on the given
// backend.
func NewScriptWriter(model llm.Generator, modelName string) *ScriptWriter {
	return &ScriptWriter{model: model, modelName: modelName}
}

// GenerateScript implements pipeline.ScriptStage. The length cap lives in
// the prompt; the orchestrator enforces the lower bound.
func (w *ScriptWriter) GenerateScript(ctx context.Context, query, personaName, style string) (string, error) {
	prompt := fmt.Sprintf(`I want you to write a speech in the style of %s. It should be about 30 seconds long, with a hard cap of 40 seconds.
I want you to explain the following in great detail: %s
Speak in the following style: %s. Overall, it's incredibly important to really dive deep into explaining the concepts at a low level. You are a brilliant teacher, so don't hold back.
Remember, this script shouldn't be too long, it should be about 30 seconds long, with a hard cap of 40 seconds.`, personaName, query, style)

	reply, err := w.model.Complete(ctx, llm.Request{
		Model:        w.modelName,
		SystemPrompt: scriptSystemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return "", fmt.Errorf("script generation: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
