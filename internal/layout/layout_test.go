package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestNewPositionSetHasCompleteDefaults(t *testing.T) {
	set := NewPositionSet()
	for _, template := range Templates() {
		pos, err := set.Get(template)
		require.NoError(t, err)
		assert.Equal(t, DefaultPosition(template), pos, "template %s", template)
		assert.Greater(t, pos.Zoom, 0.0)
		assert.Greater(t, pos.FrameScale, 0.0)
	}
}

func TestApplyPatchesOnlyActiveTemplate(t *testing.T) {
	set := NewPositionSet()
	before := set

	require.NoError(t, set.Apply(TemplateSplit, Patch{
		Zoom:     floatPtr(1.8),
		PanX:     floatPtr(0.4),
		ShowLogo: boolPtr(false),
	}))

	split, err := set.Get(TemplateSplit)
	require.NoError(t, err)
	assert.Equal(t, 1.8, split.Zoom)
	assert.Equal(t, 0.4, split.PanX)
	assert.False(t, split.ShowLogo)
	// Untouched fields of the patched template keep their values.
	assert.Equal(t, before.Split.FrameScale, split.FrameScale)

	for _, other := range []Template{TemplateBrowser, TemplateCentered, TemplateMinimal, TemplateOverlay} {
		got, err := set.Get(other)
		require.NoError(t, err)
		want, err := before.Get(other)
		require.NoError(t, err)
		assert.Equal(t, want, got, "template %s must be isolated", other)
	}
}

func TestResetFieldRestoresSingleField(t *testing.T) {
	set := NewPositionSet()
	require.NoError(t, set.Apply(TemplateBrowser, Patch{
		Zoom:       floatPtr(2.5),
		FrameScale: floatPtr(0.3),
		TextY:      floatPtr(0.9),
	}))

	require.NoError(t, set.ResetField(TemplateBrowser, FieldZoom))

	browser, err := set.Get(TemplateBrowser)
	require.NoError(t, err)
	def := DefaultPosition(TemplateBrowser)
	assert.Equal(t, def.Zoom, browser.Zoom)
	// The other edits survive the single-field reset.
	assert.Equal(t, 0.3, browser.FrameScale)
	assert.Equal(t, 0.9, browser.TextY)
}

func TestResetRestoresWholeTemplateOnly(t *testing.T) {
	set := NewPositionSet()
	require.NoError(t, set.Apply(TemplateOverlay, Patch{Zoom: floatPtr(3)}))
	require.NoError(t, set.Apply(TemplateMinimal, Patch{Zoom: floatPtr(2)}))

	require.NoError(t, set.Reset(TemplateOverlay))

	overlay, err := set.Get(TemplateOverlay)
	require.NoError(t, err)
	assert.Equal(t, DefaultPosition(TemplateOverlay), overlay)

	minimal, err := set.Get(TemplateMinimal)
	require.NoError(t, err)
	assert.Equal(t, 2.0, minimal.Zoom)
}

func TestUnknownTemplateAndFieldAreErrors(t *testing.T) {
	set := NewPositionSet()
	assert.Error(t, set.Apply(Template("billboard"), Patch{}))
	assert.Error(t, set.ResetField(TemplateSplit, Field("glow")))
	_, err := set.Get(Template(""))
	assert.Error(t, err)
	assert.False(t, ValidTemplate(Template("billboard")))
	assert.True(t, ValidTemplate(TemplateCentered))
}
