package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-forge/internal/listing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p := &listing.Project{ID: "p1", Name: "TabHarbor", Input: "a tab manager"}
	require.NoError(t, store.Save(ctx, p))
	assert.False(t, p.UpdatedAt.IsZero())

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "TabHarbor", got.Name)

	// The stored snapshot is isolated from later caller mutations.
	p.Name = "changed"
	got, err = store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "TabHarbor", got.Name)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &listing.Project{ID: "old", Name: "Old"}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, store.Save(ctx, &listing.Project{ID: "new", Name: "New"}))

	projects, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "new", projects[0].ID)
	assert.Equal(t, "old", projects[1].ID)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &listing.Project{ID: "p1"}))
	require.NoError(t, store.Delete(ctx, "p1"))
	assert.ErrorIs(t, store.Delete(ctx, "p1"), ErrNotFound)
}

func TestDecodeProjectMigratesLegacyPalette(t *testing.T) {
	raw := []byte(`{
		"id": "p1",
		"name": "TabHarbor",
		"brand": {
			"palette": {"primary": "#ff0000", "secondary": "#00ff00", "accent": "#0000ff", "text": "#222222"},
			"typography": {"headingFont": "Inter", "bodyFont": "Roboto"}
		},
		"background": {"kind": "solid"},
		"updatedAt": "2026-01-01T00:00:00Z"
	}`)

	p, err := decodeProject(raw)
	require.NoError(t, err)
	require.NotNil(t, p.Brand)
	assert.Equal(t, "#FF0000", p.Brand.Palette.Primary1)
	assert.Equal(t, "#00FF00", p.Brand.Palette.Primary2)
	assert.Equal(t, "#0000FF", p.Brand.Palette.Accent1)
	assert.Equal(t, "#0000FF", p.Brand.Palette.Accent2)
	assert.Equal(t, "#222222", p.Brand.Palette.NeutralDark)
	assert.Equal(t, listing.DefaultPalette().Highlight, p.Brand.Palette.Highlight)
}

func TestDecodeProjectKeepsCurrentPalette(t *testing.T) {
	p := &listing.Project{ID: "p1"}
	brand := listing.DefaultBrand()
	brand.Palette.Primary1 = "#123456"
	p.Brand = &brand

	data, err := encodeProject(p)
	require.NoError(t, err)

	got, err := decodeProject(data)
	require.NoError(t, err)
	assert.Equal(t, "#123456", got.Brand.Palette.Primary1)
}

func TestSaverCoalescesWrites(t *testing.T) {
	store := NewMemoryStore()
	saver := NewSaver(SaverOptions{Store: store, Debounce: 20 * time.Millisecond})

	p := &listing.Project{ID: "p1", Name: "first"}
	saver.Queue(p)
	p.Name = "second"
	saver.Queue(p)

	assert.Eventually(t, func() bool {
		got, err := store.Get(context.Background(), "p1")
		return err == nil && got.Name == "second"
	}, time.Second, 5*time.Millisecond)
}

func TestSaverFlushWritesImmediately(t *testing.T) {
	store := NewMemoryStore()
	saver := NewSaver(SaverOptions{Store: store, Debounce: time.Hour})

	saver.Queue(&listing.Project{ID: "p1", Name: "queued"})
	saver.Flush(context.Background())

	got, err := store.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "queued", got.Name)
}
