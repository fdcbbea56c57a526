package listing

import (
	"regexp"
	"strings"
)

// Palette is the canonical 8-slot brand color scheme.
type Palette struct {
	Primary1     string `json:"primary1"`
	Primary2     string `json:"primary2"`
	Accent1      string `json:"accent1"`
	Accent2      string `json:"accent2"`
	NeutralLight string `json:"neutralLight"`
	NeutralMid   string `json:"neutralMid"`
	NeutralDark  string `json:"neutralDark"`
	Highlight    string `json:"highlight"`
}

type Typography struct {
	HeadingFont string `json:"headingFont"`
	BodyFont    string `json:"bodyFont"`
	Reasoning   string `json:"reasoning,omitempty"`
}

type BrandIdentity struct {
	Palette     Palette    `json:"palette"`
	Typography  Typography `json:"typography"`
	VisualStyle string     `json:"visualStyle,omitempty"`
}

// LegacyPalette is the retired 4-slot scheme still found in persisted
// projects from the first schema generation.
type LegacyPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
	Text      string `json:"text,omitempty"`
}

// DefaultPalette is substituted slot-by-slot for invalid model output.
func DefaultPalette() Palette {
	return Palette{
		Primary1:     "#AAFF00",
		Primary2:     "#84CC16",
		Accent1:      "#CCFF33",
		Accent2:      "#65A30D",
		NeutralLight: "#FFFFFF",
		NeutralMid:   "#9CA3AF",
		NeutralDark:  "#111827",
		Highlight:    "#EAFF7B",
	}
}

func DefaultTypography() Typography {
	return Typography{HeadingFont: "Inter", BodyFont: "Roboto"}
}

func DefaultBrand() BrandIdentity {
	return BrandIdentity{Palette: DefaultPalette(), Typography: DefaultTypography()}
}

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidHex accepts exactly # plus six hex digits. Alpha channels,
// shorthand forms, and the all-zero glitch value are rejected.
func ValidHex(value string) bool {
	value = strings.TrimSpace(value)
	if !hexColorRegex.MatchString(value) {
		return false
	}
	return !strings.EqualFold(value[1:], "000000")
}

// NormalizeColor returns value uppercased if valid, otherwise fallback.
func NormalizeColor(value, fallback string) string {
	value = strings.TrimSpace(value)
	if ValidHex(value) {
		return "#" + strings.ToUpper(value[1:])
	}
	return fallback
}

// NormalizeBrand applies per-slot fallbacks so one bad field never sinks
// the whole identity.
func NormalizeBrand(b BrandIdentity) BrandIdentity {
	def := DefaultPalette()

	b.Palette.Primary1 = NormalizeColor(b.Palette.Primary1, def.Primary1)
	b.Palette.Primary2 = NormalizeColor(b.Palette.Primary2, def.Primary2)
	b.Palette.Accent1 = NormalizeColor(b.Palette.Accent1, def.Accent1)
	b.Palette.Accent2 = NormalizeColor(b.Palette.Accent2, def.Accent2)
	b.Palette.NeutralLight = NormalizeColor(b.Palette.NeutralLight, def.NeutralLight)
	b.Palette.NeutralMid = NormalizeColor(b.Palette.NeutralMid, def.NeutralMid)
	b.Palette.NeutralDark = NormalizeColor(b.Palette.NeutralDark, def.NeutralDark)
	b.Palette.Highlight = NormalizeColor(b.Palette.Highlight, def.Highlight)

	defType := DefaultTypography()
	if strings.TrimSpace(b.Typography.HeadingFont) == "" {
		b.Typography.HeadingFont = defType.HeadingFont
	}
	if strings.TrimSpace(b.Typography.BodyFont) == "" {
		b.Typography.BodyFont = defType.BodyFont
	}
	return b
}

// MigrateLegacyPalette lifts a 4-slot palette into the canonical 8-slot
// scheme: primary→primary1, secondary→primary2, accent→accent1 (and
// duplicated into accent2), with computed neutral and highlight
// defaults. Invalid legacy slots fall back like any other bad color.
func MigrateLegacyPalette(legacy LegacyPalette) Palette {
	def := DefaultPalette()
	migrated := Palette{
		Primary1:     NormalizeColor(legacy.Primary, def.Primary1),
		Primary2:     NormalizeColor(legacy.Secondary, def.Primary2),
		Accent1:      NormalizeColor(legacy.Accent, def.Accent1),
		Accent2:      NormalizeColor(legacy.Accent, def.Accent2),
		NeutralLight: def.NeutralLight,
		NeutralMid:   def.NeutralMid,
		NeutralDark:  NormalizeColor(legacy.Text, def.NeutralDark),
		Highlight:    def.Highlight,
	}
	return migrated
}
