package stages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spewlabs/explainer/internal/llm"
)

// recordingModel captures the last request and returns a canned reply.
type recordingModel struct {
	reply string
	err   error
	last  llm.Request
}

func (m *recordingModel) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.last = req
	return m.reply, m.err
}

func TestGenerateScript(t *testing.T) {
	model := &recordingModel{reply: "  A script about entropy.  \n"}
	w := NewScriptWriter(model, "script-model")

	script, err := w.GenerateScript(context.Background(), "what is entropy", "Albert Einstein", "warm curiosity")
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if script != "A script about entropy." {
		t.Errorf("script = %q, want trimmed reply", script)
	}

	if model.last.Model != "script-model" {
		t.Errorf("model = %q", model.last.Model)
	}
	for _, want := range []string{"Albert Einstein", "what is entropy", "warm curiosity"} {
		if !strings.Contains(model.last.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateScriptModelFailure(t *testing.T) {
	w := NewScriptWriter(&recordingModel{err: errors.New("rate limited")}, "m")

	if _, err := w.GenerateScript(context.Background(), "q", "n", "s"); err == nil {
		t.Error("model failure should propagate")
	}
}
