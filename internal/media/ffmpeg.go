// Package media drives ffmpeg and ffprobe for every local video
// operation: probing, still-to-clip conversion, placeholder rendering,
// visual-track concatenation, and the final vertical composite.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Clip dimensions for the mobile-friendly vertical composite: two square
// panes stacked into a 9:16 frame.
const (
	paneSize        = 1080
	compositeWidth  = 1080
	compositeHeight = 2160
)

// Adapter shells out to ffmpeg and ffprobe.
type Adapter struct {
	ffmpeg  string
	ffprobe string
}

// New creates an Adapter. Empty paths resolve from PATH.
func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// ProbeDuration returns the container duration of a media file.
func (a *Adapter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	raw := strings.TrimSpace(string(b))
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: parse %q: %w", raw, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// StillToClip renders a still image as a video clip of the given duration.
func (a *Adapter) StillToClip(ctx context.Context, imagePath string, duration time.Duration, outMP4 string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-t", fmtSeconds(duration),
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
			paneSize, paneSize, paneSize, paneSize),
		"-r", "24",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		outMP4,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg still to clip: %w\n%s", err, string(b))
	}
	return nil
}

// PlaceholderClip renders a flat dark clip of the given duration. This is
// the last tier of the segment fallback chain.
func (a *Adapter) PlaceholderClip(ctx context.Context, duration time.Duration, outMP4 string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x0b1021:s=%dx%d:d=%s:r=24", paneSize, paneSize, fmtSeconds(duration)),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		outMP4,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg placeholder clip: %w\n%s", err, string(b))
	}
	return nil
}

// ConcatClips concatenates clips in the given order into one continuous
// visuals-only track. Audio is deliberately suppressed; narration audio is
// merged later from the lip-sync branch.
//
// The concat list file is removed on every path, including failures.
func (a *Adapter) ConcatClips(ctx context.Context, clipPaths []string, outMP4 string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("ffmpeg concat: no input clips")
	}

	list, err := os.CreateTemp(filepath.Dir(outMP4), "concat-*.txt")
	if err != nil {
		return fmt.Errorf("ffmpeg concat: create list file: %w", err)
	}
	listPath := list.Name()
	defer os.Remove(listPath)

	var sb strings.Builder
	for _, p := range clipPaths {
		abs, absErr := filepath.Abs(p)
		if absErr != nil {
			abs = p
		}
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if _, err := list.WriteString(sb.String()); err != nil {
		list.Close()
		return fmt.Errorf("ffmpeg concat: write list file: %w", err)
	}
	if err := list.Close(); err != nil {
		return fmt.Errorf("ffmpeg concat: close list file: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-r", "24",
		outMP4,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w\n%s", err, string(b))
	}
	return nil
}

// StackComposite builds the final vertical video: the visuals track on
// top, the lip-synced narrator below, each aspect-fit into a 1080x1080
// pane, stacked to 1080x2160. Audio comes from the narrator clip, and the
// narrator clip's duration is the master duration.
func (a *Adapter) StackComposite(ctx context.Context, visualsMP4, narratorMP4, outMP4 string) error {
	pane := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		paneSize, paneSize, paneSize, paneSize)
	filter := fmt.Sprintf("[0:v]%s[top];[1:v]%s[bottom];[top][bottom]vstack=inputs=2[v]", pane, pane)

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", visualsMP4,
		"-i", narratorMP4,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "1:a?",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
		"-shortest",
		outMP4,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg composite: %w\n%s", err, string(b))
	}
	return nil
}

func fmtSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
