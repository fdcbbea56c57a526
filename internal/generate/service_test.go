package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-forge/internal/gemini"
	"listing-forge/internal/jsonrepair"
	"listing-forge/internal/listing"
	"listing-forge/internal/retry"
)

// fakeClient scripts Generate/GenerateImage responses in call order.
type fakeClient struct {
	mu         sync.Mutex
	texts      []string
	textErrs   []error
	images     [][]string
	imageErrs  []error
	requests   []gemini.Request
	imageCalls int
}

func (f *fakeClient) Generate(_ context.Context, req gemini.Request) (gemini.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	idx := len(f.requests) - 1
	if idx < len(f.textErrs) && f.textErrs[idx] != nil {
		return gemini.Response{}, f.textErrs[idx]
	}
	if idx < len(f.texts) {
		return gemini.Response{Text: f.texts[idx]}, nil
	}
	return gemini.Response{}, errors.New("unexpected call")
}

func (f *fakeClient) GenerateImage(_ context.Context, req gemini.Request) (gemini.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.imageCalls
	f.imageCalls++
	if idx < len(f.imageErrs) && f.imageErrs[idx] != nil {
		return gemini.Response{}, f.imageErrs[idx]
	}
	if idx < len(f.images) {
		return gemini.Response{Images: f.images[idx]}, nil
	}
	return gemini.Response{}, errors.New("unexpected image call")
}

func newTestService(client *fakeClient) *Service {
	return New(Options{
		Client: client,
		Policy: retry.Policy{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			Retryable:  retry.IsRateLimit,
			Sleep:      func(context.Context, time.Duration) error { return nil },
		},
	})
}

const completeAnalysisJSON = `{
	"category": "Productivity",
	"targetAudience": "Remote workers",
	"coreFeatures": ["tab grouping", "session restore"],
	"keywords": ["tabs", "focus"],
	"toneAdjectives": ["calm", "practical", "focused"],
	"seoStrategy": "Lead with tab keywords.",
	"marketAnalysis": "Crowded but fragmented.",
	"customerPsychology": "Overwhelm drives installs.",
	"isJunk": false
}`

func TestAnalyzeIdeaJoinsTone(t *testing.T) {
	client := &fakeClient{texts: []string{completeAnalysisJSON}}
	svc := newTestService(client)

	a, err := svc.AnalyzeIdea(context.Background(), "a tab manager")
	require.NoError(t, err)
	assert.Equal(t, "calm, practical, focused", a.Tone)
	assert.Equal(t, "Productivity", a.Category)
	assert.Len(t, a.CoreFeatures, 2)
}

func TestAnalyzeIdeaJunk(t *testing.T) {
	client := &fakeClient{texts: []string{`{"isJunk": true}`}}
	svc := newTestService(client)

	_, err := svc.AnalyzeIdea(context.Background(), "asdfgh jkl")
	assert.ErrorIs(t, err, ErrJunkInput)
	assert.Len(t, client.requests, 1)
}

func TestAnalyzeIdeaRetriesIncompleteWithHint(t *testing.T) {
	incomplete := `{"category": "Productivity", "isJunk": false}`
	client := &fakeClient{texts: []string{incomplete, completeAnalysisJSON}}
	svc := newTestService(client)

	_, err := svc.AnalyzeIdea(context.Background(), "a tab manager")
	require.NoError(t, err)
	require.Len(t, client.requests, 2)
	assert.NotContains(t, client.requests[0].Text, "previous output was incomplete")
	assert.Contains(t, client.requests[1].Text, "previous output was incomplete")
}

func TestAnalyzeIdeaRetriesEmptyNarrativeFields(t *testing.T) {
	incomplete := `{
	"category": "Productivity",
	"targetAudience": "Remote workers",
	"coreFeatures": ["tab grouping"],
	"keywords": ["tabs"],
	"toneAdjectives": ["calm", "practical", "focused"],
	"seoStrategy": "",
	"marketAnalysis": "",
	"customerPsychology": "",
	"isJunk": false
}`
	client := &fakeClient{texts: []string{incomplete, completeAnalysisJSON}}
	svc := newTestService(client)

	a, err := svc.AnalyzeIdea(context.Background(), "a tab manager")
	require.NoError(t, err)
	require.Len(t, client.requests, 2)
	assert.Equal(t, "Crowded but fragmented.", a.MarketAnalysis)
	assert.Equal(t, "Overwhelm drives installs.", a.CustomerPsychology)
}

func TestAnalyzeIdeaGivesUpAfterThreeAttempts(t *testing.T) {
	incomplete := `{"category": "Productivity", "isJunk": false}`
	client := &fakeClient{texts: []string{incomplete, incomplete, incomplete}}
	svc := newTestService(client)

	_, err := svc.AnalyzeIdea(context.Background(), "a tab manager")
	assert.ErrorIs(t, err, jsonrepair.ErrMalformedResponse)
	assert.Len(t, client.requests, 3)
}

func TestGenerateNamesDropsOverlongAndRanks(t *testing.T) {
	long := strings.Repeat("N", listing.MaxTitleLength+1)
	payload := fmt.Sprintf(`{"names": [
		{"name": "TabHarbor", "type": "CREATIVE", "score": 95, "reasoning": "brandable"},
		{"name": %q, "type": "SEO", "score": 99, "reasoning": "too long"},
		{"name": "Tab Manager for Teams", "type": "SEO", "score": 80, "reasoning": "findable"}
	]}`, long)
	client := &fakeClient{texts: []string{payload}}
	svc := newTestService(client)

	names, err := svc.GenerateNames(context.Background(), listing.Analysis{}, 6)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "TabHarbor", names[0].Text)
	assert.True(t, names[0].TopPick)
	assert.False(t, names[1].TopPick)
}

func TestGenerateShortDescriptionsDropsOverLimit(t *testing.T) {
	over := strings.Repeat("d", listing.MaxShortDescriptionLength+1)
	payload := fmt.Sprintf(`{"descriptions": [
		{"text": "Group tabs automatically and restore sessions.", "score": 88, "reasoning": "clear"},
		{"text": %q, "score": 99, "reasoning": "over limit"}
	]}`, over)
	client := &fakeClient{texts: []string{payload}}
	svc := newTestService(client)

	descs, err := svc.GenerateShortDescriptions(context.Background(), listing.Analysis{}, "TabHarbor", 6)
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.False(t, descs[0].TopPick)
}

func TestGenerateBrandNormalizesColors(t *testing.T) {
	payload := `{
		"palette": {
			"primary1": "#ff5500", "primary2": "not-a-color",
			"accent1": "#00ccff", "accent2": "#000000",
			"neutralLight": "#ffffff", "neutralMid": "#9ca3af",
			"neutralDark": "#111827", "highlight": "#eaff7b"
		},
		"typography": {"headingFont": "Inter", "bodyFont": "Roboto"},
		"visualStyle": "clean geometric shapes"
	}`
	client := &fakeClient{texts: []string{payload}}
	svc := newTestService(client)

	brand, err := svc.GenerateBrand(context.Background(), listing.Analysis{}, "TabHarbor", "")
	require.NoError(t, err)
	assert.Equal(t, "#FF5500", brand.Palette.Primary1)
	assert.Equal(t, listing.DefaultPalette().Primary2, brand.Palette.Primary2)
	assert.Equal(t, listing.DefaultPalette().Accent2, brand.Palette.Accent2)
}

func TestGenerateScreenshotCopyClearsBadHighlight(t *testing.T) {
	payload := `{"slides": [
		{"headline": "Tame Every Tab", "subheadline": "Groups build themselves.", "highlight": "every tab"},
		{"headline": "Focus Wins", "subheadline": "One click to calm.", "highlight": "zebra"}
	]}`
	client := &fakeClient{texts: []string{payload}}
	svc := newTestService(client)

	slides, err := svc.GenerateScreenshotCopy(context.Background(), listing.Analysis{}, "TabHarbor", 2)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "every tab", slides[0].Highlight)
	assert.Empty(t, slides[1].Highlight)
	assert.NotEmpty(t, slides[0].ID)
}

func TestBrainstormIconSubjectFallsBack(t *testing.T) {
	client := &fakeClient{textErrs: []error{errors.New("boom")}}
	svc := newTestService(client)

	subject := svc.BrainstormIconSubject(context.Background(), listing.Analysis{})
	assert.Equal(t, FallbackIconSubject, subject)
}

func TestBrainstormIconSubjectTrims(t *testing.T) {
	client := &fakeClient{texts: []string{"\"a lighthouse beam over stacked cards.\"\n"}}
	svc := newTestService(client)

	subject := svc.BrainstormIconSubject(context.Background(), listing.Analysis{})
	assert.Equal(t, "a lighthouse beam over stacked cards", subject)
}

func TestGenerateIconRetriesRateLimit(t *testing.T) {
	rateLimit := &gemini.APIError{StatusCode: 429, Status: "429", Body: "quota"}
	client := &fakeClient{
		imageErrs: []error{rateLimit, nil},
		images:    [][]string{nil, {"data:image/png;base64,AAAA"}},
	}
	svc := newTestService(client)

	asset, err := svc.GenerateIcon(context.Background(), "a lighthouse", listing.DefaultBrand())
	require.NoError(t, err)
	assert.Equal(t, listing.AssetIcon, asset.Kind)
	assert.Equal(t, "data:image/png;base64,AAAA", asset.Data)
	assert.Equal(t, 2, client.imageCalls)
}

func TestGenerateLogoVariantsPartialFailureFailsBatch(t *testing.T) {
	ok := []string{"data:image/png;base64,AAAA"}
	client := &fakeClient{
		images:    [][]string{ok, ok, ok, ok},
		imageErrs: []error{nil, nil, gemini.ErrNoImage, nil},
	}
	svc := newTestService(client)

	_, err := svc.GenerateLogoVariants(context.Background(), "a lighthouse", listing.DefaultBrand())
	assert.ErrorIs(t, err, gemini.ErrNoImage)
}

func TestGenerateLogoVariantsProducesFour(t *testing.T) {
	ok := []string{"data:image/png;base64,AAAA"}
	client := &fakeClient{images: [][]string{ok, ok, ok, ok}}
	svc := newTestService(client)

	variants, err := svc.GenerateLogoVariants(context.Background(), "a lighthouse", listing.DefaultBrand())
	require.NoError(t, err)
	require.Len(t, variants, 4)
	seen := map[string]bool{}
	for _, v := range variants {
		assert.Equal(t, listing.AssetIcon, v.Kind)
		assert.False(t, seen[v.ID])
		seen[v.ID] = true
	}
}

func TestGenerateLongDescriptionStripsFence(t *testing.T) {
	client := &fakeClient{texts: []string{"```markdown\n## TabHarbor\nGroups tabs.\n```"}}
	svc := newTestService(client)

	body, err := svc.GenerateLongDescription(context.Background(), listing.Analysis{}, "TabHarbor", "short")
	require.NoError(t, err)
	assert.Equal(t, "## TabHarbor\nGroups tabs.", body)
}

func TestDescribeStyleRequiresDataURL(t *testing.T) {
	svc := newTestService(&fakeClient{})
	_, err := svc.DescribeStyle(context.Background(), "https://example.com/x.png")
	assert.Error(t, err)
}
