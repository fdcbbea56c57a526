package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"listing-forge/internal/layout"
	"listing-forge/internal/listing"
)

// Fonts are embedded so renders never depend on system font state.
var (
	headlineFont = mustParseFont(gobold.TTF)
	bodyFont     = mustParseFont(goregular.TTF)
)

func mustParseFont(ttf []byte) *sfnt.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("parse embedded font: %v", err))
	}
	return f
}

func newFace(f *sfnt.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// textArea is where and how a template places its copy block.
type textArea struct {
	anchorX  int // alignment reference x
	topY     int // first baseline offset start
	maxWidth int
	align    listing.Alignment
}

func copyArea(canvasW, canvasH int, spec Spec) textArea {
	pos := spec.Position
	area := textArea{
		anchorX:  canvasW / 2,
		topY:     int(float64(canvasH) * 0.08),
		maxWidth: int(float64(canvasW) * 0.8),
		align:    listing.AlignCenter,
	}
	switch spec.Template {
	case layout.TemplateSplit:
		area.anchorX = int(float64(canvasW) * 0.08)
		area.topY = int(float64(canvasH) * 0.3)
		area.maxWidth = int(float64(canvasW) * 0.42)
		area.align = listing.AlignLeft
	case layout.TemplateOverlay:
		area.topY = int(float64(canvasH) * 0.62)
	}
	if spec.Align != "" {
		area.align = spec.Align
	}
	area.anchorX += int(pos.TextX * float64(canvasW))
	area.topY += int(pos.TextY * float64(canvasH))
	return area
}

// drawCopy renders headline (with brush-underlined highlight) and
// subheadline into the template's text area.
func drawCopy(canvas *image.RGBA, spec Spec) error {
	cw, ch := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	area := copyArea(cw, ch, spec)

	headSize := float64(ch) / 11 * nonZero(spec.Position.HeadlineScale)
	subSize := float64(ch) / 24 * nonZero(spec.Position.SubheadlineScale)

	headFace, err := newFace(headlineFont, headSize)
	if err != nil {
		return err
	}
	defer headFace.Close()
	subFace, err := newFace(bodyFont, subSize)
	if err != nil {
		return err
	}
	defer subFace.Close()

	textColor := parseHex(spec.Brand.Palette.NeutralLight, fallbackLight)
	highlightColor := parseHex(spec.Brand.Palette.Highlight, fallbackLight)

	y := area.topY + int(headSize)
	for _, line := range wrapText(headFace, spec.Headline, area.maxWidth) {
		drawHighlightedLine(canvas, headFace, line, spec.Highlight, area, y, textColor, highlightColor, headSize)
		y += int(headSize * 1.2)
	}

	if spec.Subheadline != "" {
		y += int(subSize * 0.6)
		subColor := withAlpha(textColor, 225)
		for _, line := range wrapText(subFace, spec.Subheadline, area.maxWidth) {
			drawLineSegments(canvas, subFace, []segment{{text: line, col: subColor}}, area, y)
			y += int(subSize * 1.45)
		}
	}
	return nil
}

// segment is a run of same-colored text within one line.
type segment struct {
	text      string
	col       color.NRGBA
	underline bool
}

// splitHighlight segments a line around the first case-insensitive
// occurrence of highlight. No occurrence returns the line unmodified.
func splitHighlight(line, highlight string, textColor, highlightColor color.NRGBA) []segment {
	start, end := foldIndex(line, highlight)
	if start < 0 {
		return []segment{{text: line, col: textColor}}
	}
	return []segment{
		{text: line[:start], col: textColor},
		{text: line[start:end], col: highlightColor, underline: true},
		{text: line[end:], col: textColor},
	}
}

// foldIndex finds the first case-insensitive occurrence of substr in s
// and returns its byte bounds within s itself. Lowercasing can change
// a rune's byte length, so offsets into a lowered copy are unusable.
func foldIndex(s, substr string) (int, int) {
	if substr == "" {
		return -1, -1
	}
	for start := 0; start < len(s); {
		end := start
		matched := true
		for _, hr := range substr {
			sr, size := utf8.DecodeRuneInString(s[end:])
			if size == 0 || unicode.ToLower(sr) != unicode.ToLower(hr) {
				matched = false
				break
			}
			end += size
		}
		if matched {
			return start, end
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		start += size
	}
	return -1, -1
}

// drawHighlightedLine splits the line around a case-insensitive match of
// highlight and paints the match in the highlight color over a brush
// underline.
func drawHighlightedLine(canvas *image.RGBA, face font.Face, line, highlight string, area textArea, baselineY int, textColor, highlightColor color.NRGBA, headSize float64) {
	segments := splitHighlight(line, highlight, textColor, highlightColor)

	startX := lineStartX(face, segments, area)
	x := startX
	for _, seg := range segments {
		if seg.text == "" {
			continue
		}
		advance := font.MeasureString(face, seg.text)
		if seg.underline {
			brushH := int(headSize * 0.16)
			if brushH < 3 {
				brushH = 3
			}
			rect := image.Rect(x, baselineY+brushH/2, x+advance.Ceil(), baselineY+brushH/2+brushH)
			draw.Draw(canvas, rect, image.NewUniform(withAlpha(highlightColor, 210)), image.Point{}, draw.Over)
		}
		d := font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(seg.col),
			Face: face,
			Dot:  fixed.P(x, baselineY),
		}
		d.DrawString(seg.text)
		x += advance.Ceil()
	}
}

func drawLineSegments(canvas *image.RGBA, face font.Face, segments []segment, area textArea, baselineY int) {
	x := lineStartX(face, segments, area)
	for _, seg := range segments {
		if seg.text == "" {
			continue
		}
		d := font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(seg.col),
			Face: face,
			Dot:  fixed.P(x, baselineY),
		}
		d.DrawString(seg.text)
		x += font.MeasureString(face, seg.text).Ceil()
	}
}

func lineStartX(face font.Face, segments []segment, area textArea) int {
	width := 0
	for _, seg := range segments {
		width += font.MeasureString(face, seg.text).Ceil()
	}
	switch area.align {
	case listing.AlignLeft:
		return area.anchorX
	case listing.AlignRight:
		return area.anchorX - width
	default:
		return area.anchorX - width/2
	}
}

// wrapText greedily packs words into lines no wider than maxWidth.
func wrapText(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}

// drawHeader paints the small brand row: logo mark and extension name.
func drawHeader(canvas *image.RGBA, spec Spec) error {
	ch := canvas.Bounds().Dy()
	pad := ch / 24
	x := pad

	logoH := int(float64(ch) * 0.055 * nonZero(spec.Position.LogoScale))
	if spec.Position.ShowLogo && spec.Logo != nil && logoH > 0 {
		lb := spec.Logo.Bounds()
		logoW := logoH
		if lb.Dy() > 0 {
			logoW = logoH * lb.Dx() / lb.Dy()
		}
		scaled := ScaleTo(spec.Logo, logoW, logoH)
		topLeft := image.Pt(x, pad)
		draw.Draw(canvas, image.Rectangle{Min: topLeft, Max: topLeft.Add(image.Pt(logoW, logoH))}, scaled, scaled.Bounds().Min, draw.Over)
		x += logoW + pad/2
	}

	if spec.Position.ShowName && spec.Name != "" {
		size := float64(ch) * 0.04
		face, err := newFace(headlineFont, size)
		if err != nil {
			return err
		}
		defer face.Close()
		d := font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(parseHex(spec.Brand.Palette.NeutralLight, fallbackLight)),
			Face: face,
			Dot:  fixed.P(x, pad+int(size)),
		}
		d.DrawString(spec.Name)
	}
	return nil
}

func nonZero(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}
