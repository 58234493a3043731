package sandbox

import (
	"strings"
	"testing"
)

func TestInjectOutputPathRedirectsCall(t *testing.T) {
	script := "render()\nsave_artifact(\"output.mp4\")\n"

	got := InjectOutputPath(script, "/work/segment-01.mp4")

	if !strings.Contains(got, `save_artifact("/work/segment-01.mp4")`) {
		t.Errorf("call not redirected:\n%s", got)
	}
	if strings.Contains(got, "output.mp4") {
		t.Errorf("original literal should be gone:\n%s", got)
	}
}

func TestInjectOutputPathHandlesVariants(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"single quotes", "save_artifact('clip.mp4')"},
		{"internal whitespace", "save_artifact(  \"clip.mp4\"  )"},
		{"multiple calls", "save_artifact(\"a.mp4\")\nsave_artifact('b.mp4')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InjectOutputPath(tt.script, "/out/final.mp4")
			if strings.Contains(got, "clip.mp4") || strings.Contains(got, "a.mp4") || strings.Contains(got, "b.mp4") {
				t.Errorf("literal survived redirection:\n%s", got)
			}
			if strings.Count(got, "/out/final.mp4") != strings.Count(tt.script, "save_artifact") {
				t.Errorf("every call should be redirected:\n%s", got)
			}
		})
	}
}

func TestInjectOutputPathAppendsWhenMissing(t *testing.T) {
	script := "render_animation()"

	got := InjectOutputPath(script, "/out/final.mp4")

	if !strings.HasPrefix(got, script) {
		t.Errorf("original script should be preserved:\n%s", got)
	}
	if !strings.Contains(got, `save_artifact("/out/final.mp4")`) {
		t.Errorf("missing call should be appended:\n%s", got)
	}
}
