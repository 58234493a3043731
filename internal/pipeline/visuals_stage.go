package pipeline

import (
	"context"
	"path/filepath"

	"github.com/spewlabs/explainer/internal/assemble"
	"github.com/spewlabs/explainer/internal/models"
	"github.com/spewlabs/explainer/internal/remote"
	"github.com/spewlabs/explainer/internal/visuals"
)

// Visuals is the in-process visuals branch: plan, generate per-segment
// artifacts through the fallback chain, assemble the continuous track.
type Visuals struct {
	planner   *visuals.Planner
	generator *visuals.Generator
	assembler *assemble.Assembler
}

// NewVisuals wires the visuals branch.
func NewVisuals(planner *visuals.Planner, generator *visuals.Generator, assembler *assemble.Assembler) *Visuals {
	return &Visuals{planner: planner, generator: generator, assembler: assembler}
}

// GenerateVisuals implements VisualsStage. A failed plan or an assembly
// with zero surviving segments fails the branch; per-segment failures are
// absorbed by the fallback chain.
func (v *Visuals) GenerateVisuals(ctx context.Context, transcript models.Transcript, workDir string) (remote.File, error) {
	plan, err := v.planner.BuildPlan(ctx, transcript)
	if err != nil {
		return nil, err
	}

	results := v.generator.GenerateSegments(ctx, plan, workDir)

	outPath, err := v.assembler.Assemble(ctx, results, filepath.Join(workDir, "visuals.mp4"))
	if err != nil {
		return nil, err
	}
	return remote.NewLocalFile(outPath), nil
}
