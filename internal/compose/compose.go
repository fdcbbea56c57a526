// Package compose renders marketing graphics deterministically on the
// CPU: background, framed source imagery, headline copy, and brand
// accents. Rendering is pure; the same Spec always yields the same
// pixels.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"listing-forge/internal/layout"
	"listing-forge/internal/listing"
)

// Canvas sizes for each promotional surface, in pixels.
var (
	ScreenshotSize = image.Pt(1280, 800)
	MarqueeSize    = image.Pt(1400, 560)
	SmallTileSize  = image.Pt(440, 280)
	IconSize       = image.Pt(128, 128)
)

// IconExportSizes are the square edge lengths written into the archive.
var IconExportSizes = []int{128, 48, 32, 16}

// CanvasFor maps an asset kind to its canvas size.
func CanvasFor(kind listing.AssetKind) (image.Point, error) {
	switch kind {
	case listing.AssetScreenshot:
		return ScreenshotSize, nil
	case listing.AssetMarquee:
		return MarqueeSize, nil
	case listing.AssetSmallTile:
		return SmallTileSize, nil
	case listing.AssetIcon, listing.AssetIconResized:
		return IconSize, nil
	}
	return image.Point{}, fmt.Errorf("no canvas for asset kind %q", kind)
}

// Spec is everything one render needs. Source is the screenshot or logo
// placed in the frame; Logo is the small brand mark shown with the name.
type Spec struct {
	Size       image.Point
	Template   layout.Template
	Position   layout.Position
	Mode       listing.ContentMode
	Align      listing.Alignment
	Background listing.BackgroundStyle
	Brand      listing.BrandIdentity

	Headline    string
	Subheadline string
	Highlight   string
	Name        string

	Source image.Image
	Logo   image.Image
}

// Render composites one graphic. The stages always run in the same
// order: background, frame, text, brand header.
func Render(spec Spec) (*image.RGBA, error) {
	if spec.Size.X <= 0 || spec.Size.Y <= 0 {
		return nil, errors.New("canvas size must be positive")
	}
	if !layout.ValidTemplate(spec.Template) {
		return nil, fmt.Errorf("unknown template %q", spec.Template)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, spec.Size.X, spec.Size.Y))
	fillBackground(canvas, spec.Background, spec.Brand.Palette)

	if spec.Source != nil {
		if err := drawFrame(canvas, spec); err != nil {
			return nil, fmt.Errorf("draw frame: %w", err)
		}
	}
	if spec.Headline != "" || spec.Subheadline != "" {
		if err := drawCopy(canvas, spec); err != nil {
			return nil, fmt.Errorf("draw copy: %w", err)
		}
	}
	if spec.Position.ShowLogo || spec.Position.ShowName {
		if err := drawHeader(canvas, spec); err != nil {
			return nil, fmt.Errorf("draw header: %w", err)
		}
	}
	return canvas, nil
}

// parseHex converts a 6-digit hex color; invalid input yields fallback.
func parseHex(value string, fallback color.NRGBA) color.NRGBA {
	if !listing.ValidHex(value) {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(value[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
