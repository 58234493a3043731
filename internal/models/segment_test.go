package models

import (
	"testing"
)

func TestSegmentKindValid(t *testing.T) {
	tests := []struct {
		kind  SegmentKind
		valid bool
	}{
		{KindAnimation, true},
		{KindImage, true},
		{KindPlaceholder, false},
		{SegmentKind("video"), false},
		{SegmentKind(""), false},
	}

	for _, tt := range tests {
		if got := tt.kind.Valid(); got != tt.valid {
			t.Errorf("Valid(%q) = %v, want %v", tt.kind, got, tt.valid)
		}
	}
}

func TestVisualSegmentSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    VisualSegmentSpec
		wantErr bool
	}{
		{
			name: "valid animation",
			spec: VisualSegmentSpec{Kind: KindAnimation, Description: "a sorting network", StartTime: 0, EndTime: 4.5},
		},
		{
			name: "valid image",
			spec: VisualSegmentSpec{Kind: KindImage, Description: "a portrait", StartTime: 4.5, EndTime: 9},
		},
		{
			name:    "placeholder cannot be planned",
			spec:    VisualSegmentSpec{Kind: KindPlaceholder, Description: "filler", StartTime: 0, EndTime: 1},
			wantErr: true,
		},
		{
			name:    "missing description",
			spec:    VisualSegmentSpec{Kind: KindAnimation, StartTime: 0, EndTime: 1},
			wantErr: true,
		},
		{
			name:    "negative start",
			spec:    VisualSegmentSpec{Kind: KindAnimation, Description: "x", StartTime: -0.1, EndTime: 1},
			wantErr: true,
		},
		{
			name:    "end equals start",
			spec:    VisualSegmentSpec{Kind: KindAnimation, Description: "x", StartTime: 2, EndTime: 2},
			wantErr: true,
		},
		{
			name:    "end before start",
			spec:    VisualSegmentSpec{Kind: KindAnimation, Description: "x", StartTime: 3, EndTime: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVisualSegmentSpecDuration(t *testing.T) {
	spec := VisualSegmentSpec{StartTime: 1.5, EndTime: 6}
	if got := spec.Duration(); got != 4.5 {
		t.Errorf("Duration() = %v, want 4.5", got)
	}
}

func TestVisualPlanSortByStart(t *testing.T) {
	plan := &VisualPlan{Segments: []VisualSegmentSpec{
		{Kind: KindImage, Description: "c", StartTime: 8, EndTime: 10},
		{Kind: KindAnimation, Description: "a", StartTime: 0, EndTime: 4},
		{Kind: KindAnimation, Description: "b", StartTime: 4, EndTime: 8},
	}}

	plan.SortByStart()

	for i, want := range []string{"a", "b", "c"} {
		if plan.Segments[i].Description != want {
			t.Errorf("segment %d = %q, want %q", i, plan.Segments[i].Description, want)
		}
	}

	// Idempotent: sorting again changes nothing.
	plan.SortByStart()
	if plan.Segments[0].Description != "a" || plan.Segments[2].Description != "c" {
		t.Error("second sort changed the order")
	}
}

func TestVisualPlanSortIsStable(t *testing.T) {
	plan := &VisualPlan{Segments: []VisualSegmentSpec{
		{Description: "first", StartTime: 2, EndTime: 4},
		{Description: "second", StartTime: 2, EndTime: 5},
	}}

	plan.SortByStart()

	if plan.Segments[0].Description != "first" {
		t.Error("equal start times should keep their original order")
	}
}

func TestVisualPlanOverlaps(t *testing.T) {
	plan := &VisualPlan{Segments: []VisualSegmentSpec{
		{Description: "a", StartTime: 0, EndTime: 5},
		{Description: "b", StartTime: 4, EndTime: 8}, // starts inside a
		{Description: "c", StartTime: 8, EndTime: 10},
	}}

	overlaps := plan.Overlaps()
	if len(overlaps) != 1 || overlaps[0] != 0 {
		t.Errorf("Overlaps() = %v, want [0]", overlaps)
	}
}

func TestVisualPlanOverlapsNone(t *testing.T) {
	plan := &VisualPlan{Segments: []VisualSegmentSpec{
		{StartTime: 0, EndTime: 4},
		{StartTime: 4, EndTime: 8},
	}}

	if overlaps := plan.Overlaps(); len(overlaps) != 0 {
		t.Errorf("Overlaps() = %v, want none", overlaps)
	}
}
