package compose

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"listing-forge/internal/listing"
)

var (
	fallbackDark  = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 255}
	fallbackLight = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// fillBackground paints the whole canvas per the project's background
// style. Unknown kinds degrade to a solid neutral fill.
func fillBackground(canvas *image.RGBA, style listing.BackgroundStyle, palette listing.Palette) {
	switch style.Kind {
	case listing.BackgroundGradient:
		fillGradient(canvas, palette)
	case listing.BackgroundMesh:
		fillMesh(canvas, palette)
	default:
		base := parseHex(style.Color, parseHex(palette.NeutralDark, fallbackDark))
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(base), image.Point{}, draw.Src)
	}
}

// fillGradient paints a diagonal blend from primary1 to primary2.
func fillGradient(canvas *image.RGBA, palette listing.Palette) {
	from := parseHex(palette.Primary1, fallbackDark)
	to := parseHex(palette.Primary2, fallbackLight)

	b := canvas.Bounds()
	span := float64(b.Dx() + b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := float64(x-b.Min.X+y-b.Min.Y) / span
			canvas.SetRGBA(x, y, lerpColor(from, to, t))
		}
	}
}

// meshBlob is one soft radial spot of the mesh background.
type meshBlob struct {
	cx, cy, radius float64 // fractions of canvas size
	col            color.NRGBA
}

// fillMesh paints a dark base with fixed soft color blobs. Blob
// placement is constant so renders stay reproducible.
func fillMesh(canvas *image.RGBA, palette listing.Palette) {
	base := parseHex(palette.NeutralDark, fallbackDark)
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(base), image.Point{}, draw.Src)

	blobs := []meshBlob{
		{cx: 0.15, cy: 0.2, radius: 0.55, col: parseHex(palette.Primary1, fallbackLight)},
		{cx: 0.85, cy: 0.15, radius: 0.45, col: parseHex(palette.Accent1, fallbackLight)},
		{cx: 0.7, cy: 0.85, radius: 0.6, col: parseHex(palette.Primary2, fallbackLight)},
		{cx: 0.25, cy: 0.9, radius: 0.4, col: parseHex(palette.Accent2, fallbackLight)},
	}

	b := canvas.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			acc := canvas.RGBAAt(x, y)
			for _, blob := range blobs {
				dx := (float64(x-b.Min.X)/w - blob.cx)
				dy := (float64(y-b.Min.Y)/h - blob.cy)
				dist := math.Sqrt(dx*dx+dy*dy) / blob.radius
				if dist >= 1 {
					continue
				}
				// Smooth falloff, capped so the base still reads through.
				strength := (1 - dist) * (1 - dist) * 0.55
				acc = blend(acc, blob.col, strength)
			}
			canvas.SetRGBA(x, y, acc)
		}
	}
}

func lerpColor(from, to color.NRGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return color.RGBA{R: lerp(from.R, to.R), G: lerp(from.G, to.G), B: lerp(from.B, to.B), A: 255}
}

func blend(base color.RGBA, over color.NRGBA, strength float64) color.RGBA {
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-strength) + float64(b)*strength)
	}
	return color.RGBA{R: mix(base.R, over.R), G: mix(base.G, over.G), B: mix(base.B, over.B), A: 255}
}
