// Package export turns a project into deliverables: rendered promo
// images, the multi-size icon set, and the final zip archive.
package export

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"

	"listing-forge/internal/compose"
	"listing-forge/internal/listing"
)

type Options struct {
	Logger *slog.Logger
	// WebP additionally emits lossy WebP variants of rendered promos.
	WebP bool
	// WebPQuality defaults to 80.
	WebPQuality float32
}

type Renderer struct {
	log         *slog.Logger
	webp        bool
	webpQuality float32
}

func New(opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	quality := opts.WebPQuality
	if quality <= 0 {
		quality = 80
	}
	return &Renderer{log: logger, webp: opts.WebP, webpQuality: quality}
}

// RenderReport summarizes a batch render. A failed slide keeps its old
// rendered output, if any.
type RenderReport struct {
	Rendered int
	Failures map[string]string // slide ID -> error
}

func (r RenderReport) Failed() bool { return len(r.Failures) > 0 }

// RenderSlide composites one slide onto the canvas for its asset kind
// and stores the result as a PNG data URL on the slide.
func (r *Renderer) RenderSlide(project *listing.Project, slide listing.Slide, kind listing.AssetKind) (listing.Slide, error) {
	size, err := compose.CanvasFor(kind)
	if err != nil {
		return slide, err
	}

	var source image.Image
	if slide.SourceImage != "" {
		source, err = compose.DecodeDataURL(slide.SourceImage)
		if err != nil {
			return slide, fmt.Errorf("decode slide source: %w", err)
		}
	}
	var logo image.Image
	if icon := project.MainIcon(); icon != nil {
		logo, err = compose.DecodeDataURL(icon.Data)
		if err != nil {
			r.log.Warn("main icon undecodable, rendering without logo", "error", err)
			logo = nil
		}
	}

	position, err := slide.Positions.Get(slide.Template)
	if err != nil {
		return slide, err
	}

	brand := listing.DefaultBrand()
	if project.Brand != nil {
		brand = *project.Brand
	}

	canvas, err := compose.Render(compose.Spec{
		Size:        size,
		Template:    slide.Template,
		Position:    position,
		Mode:        slide.Mode,
		Align:       slide.Align,
		Background:  project.Background,
		Brand:       brand,
		Headline:    slide.Headline,
		Subheadline: slide.Subheadline,
		Highlight:   slide.Highlight,
		Name:        project.SelectedName,
		Source:      source,
		Logo:        logo,
	})
	if err != nil {
		return slide, err
	}

	pngBytes, err := compose.EncodePNG(canvas)
	if err != nil {
		return slide, err
	}
	slide.Rendered = compose.ToDataURL(pngBytes)
	return slide, nil
}

// RenderAll re-renders every slide sequentially. One bad slide never
// aborts the batch; failures are collected in the report. The context
// is checked between slides so a disconnecting caller stops the work.
func (r *Renderer) RenderAll(ctx context.Context, project *listing.Project) (RenderReport, error) {
	report := RenderReport{Failures: map[string]string{}}

	groups := []struct {
		slides []listing.Slide
		kind   listing.AssetKind
	}{
		{project.Screenshots, listing.AssetScreenshot},
		{project.Marquees, listing.AssetMarquee},
		{project.SmallTiles, listing.AssetSmallTile},
	}

	for _, group := range groups {
		for i := range group.slides {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			rendered, err := r.RenderSlide(project, group.slides[i], group.kind)
			if err != nil {
				r.log.Warn("slide render failed", "slide", group.slides[i].ID, "kind", group.kind, "error", err)
				report.Failures[group.slides[i].ID] = err.Error()
				continue
			}
			group.slides[i] = rendered
			report.Rendered++
		}
	}
	return report, nil
}

// IconSet decodes the main icon, resamples it to every export size and
// masks the corners per size, keyed by edge length.
func IconSet(iconDataURL string) (map[int][]byte, error) {
	img, err := compose.DecodeDataURL(iconDataURL)
	if err != nil {
		return nil, fmt.Errorf("decode icon: %w", err)
	}

	set := make(map[int][]byte, len(compose.IconExportSizes))
	for _, size := range compose.IconExportSizes {
		scaled := compose.ScaleTo(img, size, size)
		compose.RoundCorners(scaled, compose.IconCornerRadiusRatio)
		pngBytes, err := compose.EncodePNG(scaled)
		if err != nil {
			return nil, fmt.Errorf("icon %dpx: %w", size, err)
		}
		set[size] = pngBytes
	}
	return set, nil
}
