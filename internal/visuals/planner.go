// Package visuals turns a timed narration transcript into a rendered
// visual track: a structured plan, per-segment code generation with a
// bounded repair loop, and a deterministic fallback chain.
package visuals

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spewlabs/explainer/internal/llm"
	"github.com/spewlabs/explainer/internal/logger"
	"github.com/spewlabs/explainer/internal/models"
)

// planSchema constrains the plan model's response to the segment shape.
var planSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"segments": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"kind":        map[string]any{"type": "string", "enum": []string{"animation", "image"}},
					"description": map[string]any{"type": "string"},
					"start_time":  map[string]any{"type": "number"},
					"end_time":    map[string]any{"type": "number"},
				},
				"required": []string{"kind", "description", "start_time", "end_time"},
			},
		},
	},
	"required": []string{"segments"},
}

const planSystemPrompt = "You are a visual director for short narrated explainer videos. " +
	"Given a timed transcript, divide the narration into an ordered sequence of visual segments. " +
	"Each segment is either an animation (for concepts that benefit from motion) or an image (for diagrams and stills). " +
	"Segments must not overlap, must cover the narration in order, and the first segment must be an animation. " +
	"Return strictly valid JSON matching the provided schema."

// Planner builds visual plans from transcripts via a structured model
// call. Segmentation and timing decisions belong to the model; the
// planner enforces shape and ordering.
type Planner struct {
	model     llm.Generator
	modelName string
	log       logger.Logger
}

// NewPlanner creates a Planner. log may be nil.
func NewPlanner(model llm.Generator, modelName string, log logger.Logger) *Planner {
	return &Planner{model: model, modelName: modelName, log: logger.OrNoOp(log)}
}

// BuildPlan asks the plan model to segment the transcript and validates
// the result. A malformed response shape is an error. Segments are always
// re-sorted by start time: the model's ordering is untrusted. Overlapping
// segments and a non-animation first segment are quality defects, not
// errors; they are logged and tolerated because downstream consumers
// re-sort and skip defective segments themselves.
func (p *Planner) BuildPlan(ctx context.Context, transcript models.Transcript) (*models.VisualPlan, error) {
	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}

	var response struct {
		Segments []models.VisualSegmentSpec `json:"segments"`
	}
	err = llm.CompleteJSON(ctx, p.model, llm.Request{
		Model:        p.modelName,
		SystemPrompt: planSystemPrompt,
		Prompt:       "Timed transcript JSON:\n" + string(transcriptJSON),
		Schema:       planSchema,
		SchemaName:   "visual_plan",
	}, &response)
	if err != nil {
		return nil, fmt.Errorf("plan model call: %w", err)
	}

	if len(response.Segments) == 0 {
		return nil, fmt.Errorf("plan model returned no segments")
	}
	for i, seg := range response.Segments {
		if err := seg.Validate(); err != nil {
			return nil, fmt.Errorf("plan segment %d: %w", i, err)
		}
	}

	plan := &models.VisualPlan{Segments: response.Segments}
	plan.SortByStart()

	if overlaps := plan.Overlaps(); len(overlaps) > 0 {
		p.log.LogWarn(fmt.Sprintf("visual plan has %d overlapping segment pair(s); continuing", len(overlaps)))
	}
	if plan.Segments[0].Kind != models.KindAnimation {
		p.log.LogWarn(fmt.Sprintf("visual plan opens with %s segment instead of animation; continuing", plan.Segments[0].Kind))
	}

	p.log.LogInfo(fmt.Sprintf("visual plan built: %d segments", len(plan.Segments)))
	return plan, nil
}
