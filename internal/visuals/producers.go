package visuals

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spewlabs/explainer/internal/models"
)

// Producer renders one segment artifact at a given fallback tier.
// Producers are evaluated in chain order until one succeeds.
type Producer interface {
	Kind() models.SegmentKind
	Produce(ctx context.Context, spec models.VisualSegmentSpec, segmentID, outPath string) error
}

// Renderer is the media surface the image and placeholder tiers need.
type Renderer interface {
	StillToClip(ctx context.Context, imagePath string, duration time.Duration, outMP4 string) error
	PlaceholderClip(ctx context.Context, duration time.Duration, outMP4 string) error
}

// ImageGenerator is the external still-image collaborator. It must write
// a non-empty image file to outPath.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, description, outPath string) error
}

// AnimationProducer is the first fallback tier: code generation through
// the repair loop.
type AnimationProducer struct {
	loop *RepairLoop
}

// NewAnimationProducer creates an AnimationProducer over the given loop.
func NewAnimationProducer(loop *RepairLoop) *AnimationProducer {
	return &AnimationProducer{loop: loop}
}

// Kind returns the tier this producer represents.
func (p *AnimationProducer) Kind() models.SegmentKind { return models.KindAnimation }

// Produce runs the repair loop; exhaustion surfaces as ErrLoopExhausted
// so the chain can move to the next tier.
func (p *AnimationProducer) Produce(ctx context.Context, spec models.VisualSegmentSpec, segmentID, outPath string) error {
	artifact, _ := p.loop.Run(ctx, segmentID, spec, outPath)
	if artifact == "" {
		return models.ErrLoopExhausted
	}
	return nil
}

// ImageProducer is the second tier: a generated still held for the
// segment duration.
type ImageProducer struct {
	images   ImageGenerator
	renderer Renderer
}

// NewImageProducer creates an ImageProducer.
func NewImageProducer(images ImageGenerator, renderer Renderer) *ImageProducer {
	return &ImageProducer{images: images, renderer: renderer}
}

// Kind returns the tier this producer represents.
func (p *ImageProducer) Kind() models.SegmentKind { return models.KindImage }

// Produce generates a still image and converts it into a clip of the
// segment's duration. The intermediate image is removed after conversion.
func (p *ImageProducer) Produce(ctx context.Context, spec models.VisualSegmentSpec, segmentID, outPath string) error {
	imagePath := filepath.Join(filepath.Dir(outPath), fmt.Sprintf("%s-still.png", segmentID))
	if err := p.images.GenerateImage(ctx, spec.Description, imagePath); err != nil {
		return fmt.Errorf("generate image: %w", err)
	}
	defer os.Remove(imagePath)

	info, err := os.Stat(imagePath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("image generator produced no file at %s", imagePath)
	}

	duration := time.Duration(spec.Duration() * float64(time.Second))
	if err := p.renderer.StillToClip(ctx, imagePath, duration, outPath); err != nil {
		return fmt.Errorf("render still: %w", err)
	}
	return nil
}

// PlaceholderProducer is the last tier: a flat clip so the timeline stays
// covered even when both generated tiers fail.
type PlaceholderProducer struct {
	renderer Renderer
}

// NewPlaceholderProducer creates a PlaceholderProducer.
func NewPlaceholderProducer(renderer Renderer) *PlaceholderProducer {
	return &PlaceholderProducer{renderer: renderer}
}

// Kind returns the tier this producer represents.
func (p *PlaceholderProducer) Kind() models.SegmentKind { return models.KindPlaceholder }

// Produce renders a flat clip of the segment's duration.
func (p *PlaceholderProducer) Produce(ctx context.Context, spec models.VisualSegmentSpec, segmentID, outPath string) error {
	duration := time.Duration(spec.Duration() * float64(time.Second))
	return p.renderer.PlaceholderClip(ctx, duration, outPath)
}
