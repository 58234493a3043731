package visuals

import (
	"context"
	"fmt"
	"strings"

	"github.com/spewlabs/explainer/internal/llm"
	"github.com/spewlabs/explainer/internal/models"
)

// CodeModel is the code-generating collaborator for animation segments.
// Fix must return a complete replacement script, never a diff.
type CodeModel interface {
	GenerateCode(ctx context.Context, description string, durationSec float64) (string, error)
	FixCode(ctx context.Context, description, code, errorText string) (string, error)
}

const codeSystemPrompt = "You are an expert animation programmer. You write complete, runnable Python " +
	"scripts that render short educational animations. Every script must save its rendered " +
	"video by calling save_artifact(\"output.mp4\") exactly once. Reply with a single " +
	"fenced code block containing the full script and nothing else."

// LLMCodeModel generates and repairs animation scripts through the chat
// model. Replies are de-fenced via Markdown parsing before use.
type LLMCodeModel struct {
	model     llm.Generator
	modelName string
}

// NewLLMCodeModel creates an LLMCodeModel.
func NewLLMCodeModel(model llm.Generator, modelName string) *LLMCodeModel {
	return &LLMCodeModel{model: model, modelName: modelName}
}

// GenerateCode produces the initial script for a segment description and
// target duration. An empty reply is a GenerationFailure.
func (m *LLMCodeModel) GenerateCode(ctx context.Context, description string, durationSec float64) (string, error) {
	prompt := fmt.Sprintf(
		"Write a complete animation script for the following visual, lasting exactly %.2f seconds.\n\nVisual description: %s",
		durationSec, description,
	)
	reply, err := m.model.Complete(ctx, llm.Request{
		Model:        m.modelName,
		SystemPrompt: codeSystemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return "", err
	}
	code := llm.ExtractCode(reply)
	if strings.TrimSpace(code) == "" {
		return "", models.ErrGenerationFailed
	}
	return code, nil
}

// FixCode sends the original description, the failing script, and the
// full captured error text back to the model and returns the complete
// replacement script it produces.
func (m *LLMCodeModel) FixCode(ctx context.Context, description, code, errorText string) (string, error) {
	prompt := fmt.Sprintf(
		"The following animation script failed to run. Return the complete corrected script, not a diff.\n\n"+
			"Visual description: %s\n\nFailing script:\n```python\n%s\n```\n\nError output:\n%s",
		description, code, errorText,
	)
	reply, err := m.model.Complete(ctx, llm.Request{
		Model:        m.modelName,
		SystemPrompt: codeSystemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return "", err
	}
	fixed := llm.ExtractCode(reply)
	if strings.TrimSpace(fixed) == "" {
		return "", models.ErrGenerationFailed
	}
	return fixed, nil
}
