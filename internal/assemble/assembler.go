// Package assemble concatenates per-segment artifacts into one
// continuous visuals track.
package assemble

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spewlabs/explainer/internal/logger"
	"github.com/spewlabs/explainer/internal/models"
)

// Media is the ffmpeg surface the assembler depends on.
type Media interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	ConcatClips(ctx context.Context, clipPaths []string, outMP4 string) error
}

// Assembler joins surviving segment artifacts in timeline order. The
// output track is visuals-only; narration audio is merged later from the
// lip-sync branch.
type Assembler struct {
	media Media
	log   logger.Logger
}

// NewAssembler creates an Assembler. log may be nil.
func NewAssembler(media Media, log logger.Logger) *Assembler {
	return &Assembler{media: media, log: logger.OrNoOp(log)}
}

// Assemble re-sorts results by start time (caller order is untrusted),
// drops any segment whose artifact is missing or whose measured duration
// is not positive, and concatenates the survivors into outPath.
//
// A bad segment never aborts assembly; it is skipped with a warning.
// Zero survivors returns ErrNoSegments, which callers must treat as a
// pipeline-level failure.
func (a *Assembler) Assemble(ctx context.Context, results []models.SegmentResult, outPath string) (string, error) {
	ordered := make([]models.SegmentResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime < ordered[j].StartTime
	})

	clipPaths := make([]string, 0, len(ordered))
	for _, seg := range ordered {
		info, err := os.Stat(seg.ArtifactPath)
		if err != nil || info.Size() == 0 {
			a.log.LogWarn(fmt.Sprintf("assembly: skipping %s, artifact missing at %s", seg.SegmentID, seg.ArtifactPath))
			continue
		}

		measured, err := a.media.ProbeDuration(ctx, seg.ArtifactPath)
		if err != nil {
			a.log.LogWarn(fmt.Sprintf("assembly: skipping %s, probe failed: %v", seg.SegmentID, err))
			continue
		}
		if measured <= 0 {
			a.log.LogWarn(fmt.Sprintf("assembly: skipping %s, measured duration %s is not positive", seg.SegmentID, measured))
			continue
		}

		clipPaths = append(clipPaths, seg.ArtifactPath)
	}

	if len(clipPaths) == 0 {
		return "", models.ErrNoSegments
	}

	if err := a.media.ConcatClips(ctx, clipPaths, outPath); err != nil {
		return "", fmt.Errorf("concatenate %d segment(s): %w", len(clipPaths), err)
	}

	a.log.LogInfo(fmt.Sprintf("assembly: %d/%d segment(s) concatenated into %s", len(clipPaths), len(results), outPath))
	return outPath, nil
}
