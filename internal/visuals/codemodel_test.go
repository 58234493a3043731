package visuals

import (
	"context"
	"errors"
	"testing"

	"github.com/spewlabs/explainer/internal/models"
)

func TestGenerateCodeExtractsFencedBlock(t *testing.T) {
	reply := "Here you go:\n```python\nrender()\nsave_artifact(\"output.mp4\")\n```"
	m := NewLLMCodeModel(&stubModel{reply: reply}, "code-model")

	code, err := m.GenerateCode(context.Background(), "a spinning cube", 4)
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}
	if code != "render()\nsave_artifact(\"output.mp4\")" {
		t.Errorf("code = %q", code)
	}
}

func TestGenerateCodeEmptyReplyIsGenerationFailure(t *testing.T) {
	m := NewLLMCodeModel(&stubModel{reply: "```python\n\n```"}, "code-model")

	if _, err := m.GenerateCode(context.Background(), "x", 4); !errors.Is(err, models.ErrGenerationFailed) {
		t.Errorf("error = %v, want ErrGenerationFailed", err)
	}
}

func TestFixCodeReturnsReplacementScript(t *testing.T) {
	m := NewLLMCodeModel(&stubModel{reply: "```python\nfixed()\n```"}, "code-model")

	fixed, err := m.FixCode(context.Background(), "a cube", "broken()", "NameError")
	if err != nil {
		t.Fatalf("FixCode failed: %v", err)
	}
	if fixed != "fixed()" {
		t.Errorf("fixed = %q", fixed)
	}
}

func TestFixCodeModelErrorPropagates(t *testing.T) {
	m := NewLLMCodeModel(&stubModel{err: errors.New("unavailable")}, "code-model")

	if _, err := m.FixCode(context.Background(), "x", "y", "z"); err == nil {
		t.Error("expected an error")
	}
}
