package compose

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"listing-forge/internal/layout"
	"listing-forge/internal/listing"
)

// cornerRadiusRatio keeps rounded corners visually consistent across
// canvas sizes: the mask is re-rasterized per frame, never scaled.
const cornerRadiusRatio = 0.035

// IconCornerRadiusRatio is the squircle-like mask applied to exported
// icons, re-rasterized at each target size.
const IconCornerRadiusRatio = 0.2

// baseFrameWidthRatio is the frame width at FrameScale 1.
const baseFrameWidthRatio = 0.7

// drawFrame renders the source image into its template frame and
// composites it onto the canvas with the position's transform.
func drawFrame(canvas *image.RGBA, spec Spec) error {
	pos := spec.Position
	cw, ch := canvas.Bounds().Dx(), canvas.Bounds().Dy()

	srcBounds := spec.Source.Bounds()
	if srcBounds.Dx() == 0 || srcBounds.Dy() == 0 {
		return nil
	}
	aspect := float64(srcBounds.Dy()) / float64(srcBounds.Dx())

	frameW := int(float64(cw) * baseFrameWidthRatio * pos.FrameScale)
	if frameW < 8 {
		frameW = 8
	}
	chromeH := 0
	withChrome := spec.Mode == listing.ModeScreenshot &&
		(spec.Template == layout.TemplateBrowser || spec.Template == layout.TemplateSplit)
	if withChrome {
		chromeH = frameW / 18
		if chromeH < 24 {
			chromeH = 24
		}
	}
	frameH := int(float64(frameW)*aspect) + chromeH
	if frameH < 8 {
		frameH = 8
	}

	layer := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	drawFrameContent(layer, spec, chromeH)
	applyRoundedCorners(layer)

	// Frame offsets are fractions of the canvas, measured from center.
	centerX := float64(cw)/2 + pos.FrameX*float64(cw)
	centerY := float64(ch)/2 + pos.FrameY*float64(ch)
	compositeRotated(canvas, layer, centerX, centerY, pos.FrameRotation)
	return nil
}

// drawFrameContent fills the frame layer: optional browser chrome on
// top, then the zoomed and panned source below it.
func drawFrameContent(layer *image.RGBA, spec Spec, chromeH int) {
	pos := spec.Position
	b := layer.Bounds()
	contentRect := image.Rect(b.Min.X, b.Min.Y+chromeH, b.Max.X, b.Max.Y)

	// Cover the content rect, then enlarge by zoom around its center.
	cw, ch := contentRect.Dx(), contentRect.Dy()
	zoom := pos.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	sb := spec.Source.Bounds()
	scale := math.Max(float64(cw)/float64(sb.Dx()), float64(ch)/float64(sb.Dy())) * zoom
	scaledW := int(float64(sb.Dx()) * scale)
	scaledH := int(float64(sb.Dy()) * scale)

	offsetX := (cw-scaledW)/2 + int(pos.PanX*float64(cw))
	offsetY := (ch-scaledH)/2 + int(pos.PanY*float64(ch))
	dstRect := image.Rect(
		contentRect.Min.X+offsetX,
		contentRect.Min.Y+offsetY,
		contentRect.Min.X+offsetX+scaledW,
		contentRect.Min.Y+offsetY+scaledH,
	)

	clip := image.NewRGBA(contentRect)
	xdraw.CatmullRom.Scale(clip, dstRect, spec.Source, sb, xdraw.Src, nil)
	draw.Draw(layer, contentRect, clip, contentRect.Min, draw.Src)

	if chromeH > 0 {
		drawChrome(layer, chromeH, spec.Brand.Palette)
	}
}

// drawChrome paints a browser toolbar strip with three window dots.
func drawChrome(layer *image.RGBA, chromeH int, palette listing.Palette) {
	b := layer.Bounds()
	bar := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+chromeH)
	barColor := parseHex(palette.NeutralLight, fallbackLight)
	draw.Draw(layer, bar, image.NewUniform(barColor), image.Point{}, draw.Src)

	dotColors := []color.NRGBA{
		{R: 0xFF, G: 0x5F, B: 0x57, A: 255},
		{R: 0xFE, G: 0xBC, B: 0x2E, A: 255},
		{R: 0x28, G: 0xC8, B: 0x40, A: 255},
	}
	radius := chromeH / 5
	cy := b.Min.Y + chromeH/2
	dotsEnd := b.Min.X + chromeH/2
	for i, dot := range dotColors {
		cx := b.Min.X + chromeH/2 + i*(radius*3)
		fillCircle(layer, cx, cy, radius, dot)
		dotsEnd = cx + radius
	}

	// Address bar pill filling most of the remaining strip.
	barH := chromeH * 3 / 5
	pill := image.Rect(dotsEnd+chromeH/2, cy-barH/2, b.Max.X-chromeH/2, cy+barH/2)
	if pill.Dx() > 0 {
		pillColor := parseHex(palette.NeutralMid, fallbackDark)
		draw.Draw(layer, pill, image.NewUniform(withAlpha(pillColor, 90)), image.Point{}, draw.Over)
	}
}

func fillCircle(dst *image.RGBA, cx, cy, radius int, col color.NRGBA) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				dst.Set(x, y, col)
			}
		}
	}
}

func applyRoundedCorners(layer *image.RGBA) {
	RoundCorners(layer, cornerRadiusRatio)
}

// RoundCorners zeroes pixels outside a rounded-rect mask whose radius
// is ratio times the shorter edge.
func RoundCorners(layer *image.RGBA, ratio float64) {
	b := layer.Bounds()
	w, h := b.Dx(), b.Dy()
	radius := int(float64(min(w, h)) * ratio)
	if radius < 2 {
		return
	}

	corners := []image.Point{
		{b.Min.X + radius, b.Min.Y + radius},
		{b.Max.X - radius - 1, b.Min.Y + radius},
		{b.Min.X + radius, b.Max.Y - radius - 1},
		{b.Max.X - radius - 1, b.Max.Y - radius - 1},
	}
	transparent := color.RGBA{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			inCornerBand := (x < b.Min.X+radius || x >= b.Max.X-radius) &&
				(y < b.Min.Y+radius || y >= b.Max.Y-radius)
			if !inCornerBand {
				continue
			}
			keep := false
			for _, c := range corners {
				dx, dy := x-c.X, y-c.Y
				if dx*dx+dy*dy <= radius*radius {
					keep = true
					break
				}
			}
			if !keep {
				layer.SetRGBA(x, y, transparent)
			}
		}
	}
}

// compositeRotated alpha-blends layer onto canvas, rotated by degrees
// around the layer center placed at (centerX, centerY). A zero rotation
// takes the straight draw path.
func compositeRotated(canvas *image.RGBA, layer *image.RGBA, centerX, centerY, degrees float64) {
	lb := layer.Bounds()
	lw, lh := float64(lb.Dx()), float64(lb.Dy())

	if degrees == 0 {
		topLeft := image.Pt(int(centerX-lw/2), int(centerY-lh/2))
		draw.Draw(canvas, image.Rectangle{Min: topLeft, Max: topLeft.Add(lb.Size())}, layer, lb.Min, draw.Over)
		return
	}

	theta := degrees * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)

	// Bounding box of the rotated layer.
	halfW := (math.Abs(cos)*lw + math.Abs(sin)*lh) / 2
	halfH := (math.Abs(sin)*lw + math.Abs(cos)*lh) / 2

	cb := canvas.Bounds()
	minX := int(math.Floor(centerX-halfW)) - 1
	maxX := int(math.Ceil(centerX+halfW)) + 1
	minY := int(math.Floor(centerY-halfH)) - 1
	maxY := int(math.Ceil(centerY+halfH)) + 1

	for y := max(minY, cb.Min.Y); y < min(maxY, cb.Max.Y); y++ {
		for x := max(minX, cb.Min.X); x < min(maxX, cb.Max.X); x++ {
			// Inverse rotation back into layer space.
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			sx := cos*dx + sin*dy + lw/2
			sy := -sin*dx + cos*dy + lh/2
			if sx < 0 || sy < 0 || sx >= lw || sy >= lh {
				continue
			}
			src := layer.RGBAAt(lb.Min.X+int(sx), lb.Min.Y+int(sy))
			if src.A == 0 {
				continue
			}
			canvas.SetRGBA(x, y, overPixel(canvas.RGBAAt(x, y), src))
		}
	}
}

func overPixel(dst, src color.RGBA) color.RGBA {
	if src.A == 255 {
		return src
	}
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 {
		return uint8(float64(d)*(1-a) + float64(s)*a)
	}
	return color.RGBA{R: mix(dst.R, src.R), G: mix(dst.G, src.G), B: mix(dst.B, src.B), A: 255}
}
