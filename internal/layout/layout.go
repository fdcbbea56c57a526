// Package layout holds the per-template geometry state for a visual
// asset. Every asset carries one complete Position per template, so the
// user can explore layouts without losing adjustments made elsewhere.
package layout

import "fmt"

type Template string

const (
	TemplateBrowser  Template = "browser"
	TemplateSplit    Template = "split"
	TemplateCentered Template = "centered"
	TemplateMinimal  Template = "minimal"
	TemplateOverlay  Template = "overlay"
)

func Templates() []Template {
	return []Template{TemplateBrowser, TemplateSplit, TemplateCentered, TemplateMinimal, TemplateOverlay}
}

func ValidTemplate(t Template) bool {
	switch t {
	case TemplateBrowser, TemplateSplit, TemplateCentered, TemplateMinimal, TemplateOverlay:
		return true
	}
	return false
}

// Position is the full geometry record for one template: the outer frame
// transform, the inner image transform, and the text/header transform.
type Position struct {
	FrameScale    float64 `json:"frameScale"`
	FrameX        float64 `json:"frameX"`
	FrameY        float64 `json:"frameY"`
	FrameRotation float64 `json:"frameRotation"`

	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`

	TextX            float64 `json:"textX"`
	TextY            float64 `json:"textY"`
	HeadlineScale    float64 `json:"headlineScale"`
	SubheadlineScale float64 `json:"subheadlineScale"`
	LogoScale        float64 `json:"logoScale"`
	ShowLogo         bool    `json:"showLogo"`
	ShowName         bool    `json:"showName"`
}

// Field names a single Position field for targeted resets.
type Field string

const (
	FieldFrameScale       Field = "frameScale"
	FieldFrameX           Field = "frameX"
	FieldFrameY           Field = "frameY"
	FieldFrameRotation    Field = "frameRotation"
	FieldZoom             Field = "zoom"
	FieldPanX             Field = "panX"
	FieldPanY             Field = "panY"
	FieldTextX            Field = "textX"
	FieldTextY            Field = "textY"
	FieldHeadlineScale    Field = "headlineScale"
	FieldSubheadlineScale Field = "subheadlineScale"
	FieldLogoScale        Field = "logoScale"
	FieldShowLogo         Field = "showLogo"
	FieldShowName         Field = "showName"
)

// DefaultPosition returns the canonical starting geometry for a template.
func DefaultPosition(t Template) Position {
	base := Position{
		FrameScale:       1,
		Zoom:             1,
		HeadlineScale:    1,
		SubheadlineScale: 1,
		LogoScale:        1,
		ShowLogo:         true,
		ShowName:         true,
	}

	switch t {
	case TemplateBrowser:
		base.FrameScale = 0.82
		base.FrameY = 0.12
	case TemplateSplit:
		base.FrameScale = 0.72
		base.FrameX = 0.22
		base.TextX = -0.2
	case TemplateCentered:
		base.FrameScale = 0.68
		base.FrameY = 0.08
	case TemplateMinimal:
		base.FrameScale = 0.9
		base.ShowLogo = false
	case TemplateOverlay:
		base.FrameScale = 1.05
		base.Zoom = 1.1
		base.TextY = 0.3
	}
	return base
}

// PositionSet is a closed record with one Position per template. The
// struct form (rather than a string-keyed map) makes a missing template
// a compile error instead of a runtime surprise.
type PositionSet struct {
	Browser  Position `json:"browser"`
	Split    Position `json:"split"`
	Centered Position `json:"centered"`
	Minimal  Position `json:"minimal"`
	Overlay  Position `json:"overlay"`
}

func NewPositionSet() PositionSet {
	return PositionSet{
		Browser:  DefaultPosition(TemplateBrowser),
		Split:    DefaultPosition(TemplateSplit),
		Centered: DefaultPosition(TemplateCentered),
		Minimal:  DefaultPosition(TemplateMinimal),
		Overlay:  DefaultPosition(TemplateOverlay),
	}
}

func (s *PositionSet) at(t Template) (*Position, error) {
	switch t {
	case TemplateBrowser:
		return &s.Browser, nil
	case TemplateSplit:
		return &s.Split, nil
	case TemplateCentered:
		return &s.Centered, nil
	case TemplateMinimal:
		return &s.Minimal, nil
	case TemplateOverlay:
		return &s.Overlay, nil
	}
	return nil, fmt.Errorf("unknown template %q", t)
}

func (s *PositionSet) Get(t Template) (Position, error) {
	p, err := s.at(t)
	if err != nil {
		return Position{}, err
	}
	return *p, nil
}

// Patch is a partial Position update: nil fields are left untouched.
type Patch struct {
	FrameScale    *float64 `json:"frameScale,omitempty"`
	FrameX        *float64 `json:"frameX,omitempty"`
	FrameY        *float64 `json:"frameY,omitempty"`
	FrameRotation *float64 `json:"frameRotation,omitempty"`

	Zoom *float64 `json:"zoom,omitempty"`
	PanX *float64 `json:"panX,omitempty"`
	PanY *float64 `json:"panY,omitempty"`

	TextX            *float64 `json:"textX,omitempty"`
	TextY            *float64 `json:"textY,omitempty"`
	HeadlineScale    *float64 `json:"headlineScale,omitempty"`
	SubheadlineScale *float64 `json:"subheadlineScale,omitempty"`
	LogoScale        *float64 `json:"logoScale,omitempty"`
	ShowLogo         *bool    `json:"showLogo,omitempty"`
	ShowName         *bool    `json:"showName,omitempty"`
}

// Apply patches the named template's position only; the other templates
// keep their state.
func (s *PositionSet) Apply(t Template, patch Patch) error {
	p, err := s.at(t)
	if err != nil {
		return err
	}

	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setF(&p.FrameScale, patch.FrameScale)
	setF(&p.FrameX, patch.FrameX)
	setF(&p.FrameY, patch.FrameY)
	setF(&p.FrameRotation, patch.FrameRotation)
	setF(&p.Zoom, patch.Zoom)
	setF(&p.PanX, patch.PanX)
	setF(&p.PanY, patch.PanY)
	setF(&p.TextX, patch.TextX)
	setF(&p.TextY, patch.TextY)
	setF(&p.HeadlineScale, patch.HeadlineScale)
	setF(&p.SubheadlineScale, patch.SubheadlineScale)
	setF(&p.LogoScale, patch.LogoScale)
	if patch.ShowLogo != nil {
		p.ShowLogo = *patch.ShowLogo
	}
	if patch.ShowName != nil {
		p.ShowName = *patch.ShowName
	}
	return nil
}

// ResetField restores exactly one field of one template to that
// template's default, leaving the rest of the record alone.
func (s *PositionSet) ResetField(t Template, f Field) error {
	p, err := s.at(t)
	if err != nil {
		return err
	}
	def := DefaultPosition(t)

	switch f {
	case FieldFrameScale:
		p.FrameScale = def.FrameScale
	case FieldFrameX:
		p.FrameX = def.FrameX
	case FieldFrameY:
		p.FrameY = def.FrameY
	case FieldFrameRotation:
		p.FrameRotation = def.FrameRotation
	case FieldZoom:
		p.Zoom = def.Zoom
	case FieldPanX:
		p.PanX = def.PanX
	case FieldPanY:
		p.PanY = def.PanY
	case FieldTextX:
		p.TextX = def.TextX
	case FieldTextY:
		p.TextY = def.TextY
	case FieldHeadlineScale:
		p.HeadlineScale = def.HeadlineScale
	case FieldSubheadlineScale:
		p.SubheadlineScale = def.SubheadlineScale
	case FieldLogoScale:
		p.LogoScale = def.LogoScale
	case FieldShowLogo:
		p.ShowLogo = def.ShowLogo
	case FieldShowName:
		p.ShowName = def.ShowName
	default:
		return fmt.Errorf("unknown position field %q", f)
	}
	return nil
}

// Reset restores the named template's whole position to defaults.
func (s *PositionSet) Reset(t Template) error {
	p, err := s.at(t)
	if err != nil {
		return err
	}
	*p = DefaultPosition(t)
	return nil
}
