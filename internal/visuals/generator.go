package visuals

import (
	"context"
	"fmt"

	"github.com/spewlabs/explainer/internal/logger"
	"github.com/spewlabs/explainer/internal/models"
)

// Generator renders a visual plan segment by segment, walking the
// fallback chain per segment: animation → image → placeholder. The chain
// is monotonic; a later tier is only attempted after every earlier tier
// applicable to the segment has failed.
type Generator struct {
	chain []Producer
	log   logger.Logger
}

// NewGenerator creates a Generator over an ordered fallback chain.
// The chain must be ordered from most to least preferred tier.
func NewGenerator(chain []Producer, log logger.Logger) *Generator {
	return &Generator{chain: chain, log: logger.OrNoOp(log)}
}

// GenerateSegments renders every segment of the plan into workDir and
// returns one SegmentResult per segment that any tier produced. Segments
// planned as images skip the animation tier. A segment all tiers failed
// on is skipped with a warning; a defective segment never aborts the
// plan.
func (g *Generator) GenerateSegments(ctx context.Context, plan *models.VisualPlan, workDir string) []models.SegmentResult {
	results := make([]models.SegmentResult, 0, len(plan.Segments))

	for i, spec := range plan.Segments {
		segmentID := fmt.Sprintf("segment-%02d", i+1)

		var produced *models.SegmentResult
		for _, producer := range g.chain {
			// An image-planned segment starts at the image tier.
			if spec.Kind == models.KindImage && producer.Kind() == models.KindAnimation {
				continue
			}

			outPath := fmt.Sprintf("%s/%s-%s.mp4", workDir, segmentID, producer.Kind())
			if err := producer.Produce(ctx, spec, segmentID, outPath); err != nil {
				g.log.LogWarn(fmt.Sprintf("%s: %s tier failed: %v", segmentID, producer.Kind(), err))
				continue
			}

			produced = &models.SegmentResult{
				SegmentID:    segmentID,
				ArtifactPath: outPath,
				StartTime:    spec.StartTime,
				EndTime:      spec.EndTime,
				Duration:     spec.Duration(),
				ProducedBy:   producer.Kind(),
			}
			break
		}

		if produced == nil {
			g.log.LogWarn(fmt.Sprintf("%s: all fallback tiers failed, skipping", segmentID))
			continue
		}

		g.log.LogInfo(fmt.Sprintf("%s: produced by %s tier [%.2fs-%.2fs]",
			segmentID, produced.ProducedBy, produced.StartTime, produced.EndTime))
		results = append(results, *produced)
	}

	return results
}
