package visuals

import (
	"context"
	"errors"
	"testing"

	"github.com/spewlabs/explainer/internal/llm"
	"github.com/spewlabs/explainer/internal/models"
)

// stubModel returns a canned reply for every completion.
type stubModel struct {
	reply string
	err   error
}

func (s *stubModel) Complete(ctx context.Context, req llm.Request) (string, error) {
	return s.reply, s.err
}

var planTranscript = models.Transcript{Segments: []models.TranscriptSegment{
	{Text: "First the setup.", Start: 0, End: 5},
	{Text: "Then the payoff.", Start: 5, End: 10},
}}

func TestBuildPlanSortsSegments(t *testing.T) {
	reply := `{"segments": [
		{"kind": "image", "description": "second", "start_time": 5, "end_time": 10},
		{"kind": "animation", "description": "first", "start_time": 0, "end_time": 5}
	]}`
	p := NewPlanner(&stubModel{reply: reply}, "plan-model", nil)

	plan, err := p.BuildPlan(context.Background(), planTranscript)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	if len(plan.Segments) != 2 {
		t.Fatalf("segments = %d", len(plan.Segments))
	}
	if plan.Segments[0].Description != "first" || plan.Segments[1].Description != "second" {
		t.Errorf("plan not sorted by start time: %+v", plan.Segments)
	}
}

func TestBuildPlanToleratesOverlap(t *testing.T) {
	reply := `{"segments": [
		{"kind": "animation", "description": "a", "start_time": 0, "end_time": 6},
		{"kind": "animation", "description": "b", "start_time": 5, "end_time": 10}
	]}`
	p := NewPlanner(&stubModel{reply: reply}, "plan-model", nil)

	if _, err := p.BuildPlan(context.Background(), planTranscript); err != nil {
		t.Errorf("overlap is a quality defect, not an error: %v", err)
	}
}

func TestBuildPlanToleratesNonAnimationFirst(t *testing.T) {
	reply := `{"segments": [
		{"kind": "image", "description": "a still opener", "start_time": 0, "end_time": 10}
	]}`
	p := NewPlanner(&stubModel{reply: reply}, "plan-model", nil)

	if _, err := p.BuildPlan(context.Background(), planTranscript); err != nil {
		t.Errorf("image-first plan should be tolerated: %v", err)
	}
}

func TestBuildPlanRejectsMalformedSegments(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"unknown kind", `{"segments": [{"kind": "video", "description": "x", "start_time": 0, "end_time": 5}]}`},
		{"missing description", `{"segments": [{"kind": "animation", "description": "", "start_time": 0, "end_time": 5}]}`},
		{"end before start", `{"segments": [{"kind": "animation", "description": "x", "start_time": 5, "end_time": 2}]}`},
		{"no segments", `{"segments": []}`},
		{"not json", `here is your plan`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlanner(&stubModel{reply: tt.reply}, "plan-model", nil)
			if _, err := p.BuildPlan(context.Background(), planTranscript); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestBuildPlanModelFailure(t *testing.T) {
	p := NewPlanner(&stubModel{err: errors.New("rate limited")}, "plan-model", nil)
	if _, err := p.BuildPlan(context.Background(), planTranscript); err == nil {
		t.Error("model failure should propagate")
	}
}
