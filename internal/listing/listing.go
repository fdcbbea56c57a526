// Package listing defines the domain model for a store-listing project:
// the idea analysis, scored name/description candidates, brand identity,
// generated assets, and marketing slides.
package listing

import (
	"sort"
	"time"

	"listing-forge/internal/layout"
)

// Store listing constraints enforced at generation and validation time.
const (
	MaxTitleLength            = 75
	RecommendedTitleLength    = 45
	MaxShortDescriptionLength = 131 // strictly under 132
	MaxIdeaLength             = 25000
	TopPickThreshold          = 90
)

// Analysis is the validated result of the idea-analysis flow. Tone is
// already flattened from the model's adjective list into a comma-joined
// string.
type Analysis struct {
	Category           string   `json:"category"`
	TargetAudience     string   `json:"targetAudience"`
	CoreFeatures       []string `json:"coreFeatures"`
	Keywords           []string `json:"keywords"`
	Tone               string   `json:"tone"`
	SEOStrategy        string   `json:"seoStrategy"`
	MarketAnalysis     string   `json:"marketAnalysis"`
	CustomerPsychology string   `json:"customerPsychology"`
}

type NameType string

const (
	NameSEO      NameType = "SEO"
	NameCreative NameType = "CREATIVE"
)

// GeneratedName is one scored naming candidate. Candidates are advisory:
// scores rank them, uniqueness across batches is not enforced.
type GeneratedName struct {
	Text      string   `json:"text"`
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
	Type      NameType `json:"type"`
	TopPick   bool     `json:"topPick,omitempty"`
}

// ShortDescription is one scored short-description candidate.
type ShortDescription struct {
	Text      string   `json:"text"`
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
	Keywords  []string `json:"keywords,omitempty"`
	TopPick   bool     `json:"topPick,omitempty"`
}

// RankNames sorts candidates strictly descending by score and flags the
// leader as the top pick when it clears the threshold.
func RankNames(names []GeneratedName) []GeneratedName {
	out := append([]GeneratedName(nil), names...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	for i := range out {
		out[i].TopPick = i == 0 && out[i].Score > TopPickThreshold
	}
	return out
}

// RankShortDescriptions mirrors RankNames for description candidates.
func RankShortDescriptions(descs []ShortDescription) []ShortDescription {
	out := append([]ShortDescription(nil), descs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	for i := range out {
		out[i].TopPick = i == 0 && out[i].Score > TopPickThreshold
	}
	return out
}

type AssetKind string

const (
	AssetIcon        AssetKind = "icon"
	AssetIconResized AssetKind = "icon_resized"
	AssetMarquee     AssetKind = "marquee"
	AssetSmallTile   AssetKind = "small_tile"
	AssetScreenshot  AssetKind = "screenshot"
)

// Asset is a generated or composited image. Immutable once created; a
// regenerated asset gets a fresh identifier and supersedes the old one.
type Asset struct {
	ID     string    `json:"id"`
	Kind   AssetKind `json:"kind"`
	Data   string    `json:"data"` // data URL
	Prompt string    `json:"prompt,omitempty"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
}

type ContentMode string

const (
	ModeScreenshot ContentMode = "screenshot"
	ModeLogo       ContentMode = "logo"
)

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Slide is one marketing graphic in progress: source imagery, copy, the
// active template, and an independent position per template.
type Slide struct {
	ID            string             `json:"id"`
	SourceFile    string             `json:"sourceFile,omitempty"`
	SourceImage   string             `json:"sourceImage,omitempty"` // data URL
	Rendered      string             `json:"rendered,omitempty"`    // data URL, set by the compositor
	Headline      string             `json:"headline"`
	Subheadline   string             `json:"subheadline,omitempty"`
	Highlight     string             `json:"highlight,omitempty"`
	Stylized      bool               `json:"stylized,omitempty"`
	NaturalWidth  int                `json:"naturalWidth,omitempty"`
	NaturalHeight int                `json:"naturalHeight,omitempty"`
	Template      layout.Template    `json:"template"`
	Align         Alignment          `json:"align,omitempty"`
	Mode          ContentMode        `json:"mode"`
	Positions     layout.PositionSet `json:"positions"`
}

// NewSlide creates a slide with complete per-template default positions.
func NewSlide(id string, template layout.Template) Slide {
	if !layout.ValidTemplate(template) {
		template = layout.TemplateCentered
	}
	return Slide{
		ID:        id,
		Template:  template,
		Align:     AlignCenter,
		Mode:      ModeScreenshot,
		Positions: layout.NewPositionSet(),
	}
}

type BackgroundKind string

const (
	BackgroundSolid    BackgroundKind = "solid"
	BackgroundGradient BackgroundKind = "gradient"
	BackgroundMesh     BackgroundKind = "mesh"
)

// BackgroundStyle is the shared background preference for all slides.
type BackgroundStyle struct {
	Kind       BackgroundKind `json:"kind"`
	Color      string         `json:"color,omitempty"`
	GradientID string         `json:"gradientId,omitempty"`
}

// Project is the aggregate root: one active project per client, persisted
// after every mutation with last-write-wins semantics.
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input string `json:"input"`

	Analysis *Analysis `json:"analysis,omitempty"`

	NameCandidates        []GeneratedName    `json:"nameCandidates,omitempty"`
	SelectedName          string             `json:"selectedName,omitempty"`
	DescriptionCandidates []ShortDescription `json:"descriptionCandidates,omitempty"`
	SelectedDescription   string             `json:"selectedDescription,omitempty"`

	VisualStyle     string         `json:"visualStyle,omitempty"`
	Assets          []Asset        `json:"assets,omitempty"`
	LongDescription string         `json:"longDescription,omitempty"`
	Brand           *BrandIdentity `json:"brand,omitempty"`

	Screenshots []Slide `json:"screenshots,omitempty"`
	SmallTiles  []Slide `json:"smallTiles,omitempty"`
	Marquees    []Slide `json:"marquees,omitempty"`

	Background    BackgroundStyle `json:"background"`
	PrivacyPolicy string          `json:"privacyPolicy,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// MainIcon returns the project's main icon asset, if generated.
func (p *Project) MainIcon() *Asset {
	for i := range p.Assets {
		if p.Assets[i].Kind == AssetIcon {
			return &p.Assets[i]
		}
	}
	return nil
}
