// Package models defines the shared data types for the explainer pipeline.
package models

import (
	"errors"
	"fmt"
	"sort"
)

// SegmentKind identifies how a visual segment is (or was) produced.
type SegmentKind string

// Segment kind constants
const (
	KindAnimation   SegmentKind = "animation"   // Programmatically rendered animation
	KindImage       SegmentKind = "image"       // Generated still image held for the segment duration
	KindPlaceholder SegmentKind = "placeholder" // Flat fallback clip, last tier of the fallback chain
)

// Valid reports whether the kind is one a plan may request.
// Placeholder is never planned; it only appears as a fallback outcome.
func (k SegmentKind) Valid() bool {
	return k == KindAnimation || k == KindImage
}

// VisualSegmentSpec describes one timed slice of the visual track.
// Specs are created by the plan builder and immutable afterward.
type VisualSegmentSpec struct {
	Kind        SegmentKind `json:"kind"`        // animation or image
	Description string      `json:"description"` // What the segment should show
	StartTime   float64     `json:"start_time"`  // Seconds from the start of narration
	EndTime     float64     `json:"end_time"`    // Seconds; must be > StartTime
}

// Duration returns the segment length in seconds.
func (s VisualSegmentSpec) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Validate checks the spec's shape: known kind, non-empty description,
// non-negative start, end after start.
func (s VisualSegmentSpec) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("segment kind %q is not valid", s.Kind)
	}
	if s.Description == "" {
		return errors.New("segment description is required")
	}
	if s.StartTime < 0 {
		return fmt.Errorf("segment start time %.3f is negative", s.StartTime)
	}
	if s.EndTime <= s.StartTime {
		return fmt.Errorf("segment end time %.3f is not after start time %.3f", s.EndTime, s.StartTime)
	}
	return nil
}

// VisualPlan is an ordered sequence of segment specs covering one narration.
// A plan is owned by exactly one pipeline run and discarded after segment
// generation completes.
type VisualPlan struct {
	Segments []VisualSegmentSpec
}

// SortByStart re-sorts segments by ascending start time. The model's
// ordering is untrusted, so this runs on every plan regardless of the
// order received. Sorting is stable and idempotent.
func (p *VisualPlan) SortByStart() {
	sort.SliceStable(p.Segments, func(i, j int) bool {
		return p.Segments[i].StartTime < p.Segments[j].StartTime
	})
}

// Overlaps returns the indexes i where segment i+1 starts before segment i
// ends. The plan must already be sorted by start time.
func (p *VisualPlan) Overlaps() []int {
	var overlaps []int
	for i := 0; i+1 < len(p.Segments); i++ {
		if p.Segments[i+1].StartTime < p.Segments[i].EndTime {
			overlaps = append(overlaps, i)
		}
	}
	return overlaps
}
