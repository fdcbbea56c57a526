package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-forge/internal/export"
	"listing-forge/internal/generate"
	"listing-forge/internal/listing"
	"listing-forge/internal/project"
)

// stubGenerator returns canned values; set err to fail every call.
type stubGenerator struct {
	err      error
	analysis listing.Analysis
	names    []listing.GeneratedName
	descs    []listing.ShortDescription
	brand    listing.BrandIdentity
	slides   []listing.Slide
	asset    listing.Asset
	text     string
}

func (g *stubGenerator) AnalyzeIdea(context.Context, string) (listing.Analysis, error) {
	return g.analysis, g.err
}

func (g *stubGenerator) GenerateNames(context.Context, listing.Analysis, int) ([]listing.GeneratedName, error) {
	return g.names, g.err
}

func (g *stubGenerator) GenerateShortDescriptions(context.Context, listing.Analysis, string, int) ([]listing.ShortDescription, error) {
	return g.descs, g.err
}

func (g *stubGenerator) GenerateLongDescription(context.Context, listing.Analysis, string, string) (string, error) {
	return g.text, g.err
}

func (g *stubGenerator) GeneratePrivacyPolicy(context.Context, string, []string) (string, error) {
	return g.text, g.err
}

func (g *stubGenerator) EnhancePrivacyPolicy(context.Context, string, string) (string, error) {
	return g.text + " (revised)", g.err
}

func (g *stubGenerator) GenerateBrand(context.Context, listing.Analysis, string, string) (listing.BrandIdentity, error) {
	return g.brand, g.err
}

func (g *stubGenerator) GenerateScreenshotCopy(context.Context, listing.Analysis, string, int) ([]listing.Slide, error) {
	return g.slides, g.err
}

func (g *stubGenerator) BrainstormIconSubject(context.Context, listing.Analysis) string {
	return "a lighthouse"
}

func (g *stubGenerator) GenerateIcon(context.Context, string, listing.BrandIdentity) (listing.Asset, error) {
	return g.asset, g.err
}

func (g *stubGenerator) GenerateLogoVariants(context.Context, string, listing.BrandIdentity) ([]listing.Asset, error) {
	return []listing.Asset{g.asset}, g.err
}

func (g *stubGenerator) GenerateBanner(context.Context, string, listing.BrandIdentity, string) (listing.Asset, error) {
	return g.asset, g.err
}

func (g *stubGenerator) DescribeStyle(context.Context, string) (string, error) {
	return g.text, g.err
}

func newTestServer(t *testing.T, gen Generator) (*httptest.Server, project.Store) {
	t.Helper()
	store := project.NewMemoryStore()
	srv := New(Options{
		Generator: gen,
		Store:     store,
		Saver:     project.NewSaver(project.SaverOptions{Store: store, Debounce: time.Millisecond}),
		Renderer:  export.New(export.Options{}),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func createProject(t *testing.T, ts *httptest.Server) listing.Project {
	t.Helper()
	body := bytes.NewBufferString(`{"name": "Test", "input": "a tab manager"}`)
	resp, err := http.Post(ts.URL+"/api/projects", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var p listing.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

func TestCreateAndGetProject(t *testing.T) {
	ts, _ := newTestServer(t, &stubGenerator{})
	p := createProject(t, ts)
	require.NotEmpty(t, p.ID)

	resp, err := http.Get(ts.URL + "/api/projects/" + p.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateProjectRequiresInput(t *testing.T) {
	ts, _ := newTestServer(t, &stubGenerator{})
	resp := postJSON(t, ts.URL+"/api/projects", `{"name": "x"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMissingProjectIs404(t *testing.T) {
	ts, _ := newTestServer(t, &stubGenerator{})
	resp, err := http.Get(ts.URL + "/api/projects/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalyzePersistsAnalysis(t *testing.T) {
	gen := &stubGenerator{analysis: listing.Analysis{Category: "Productivity", Tone: "calm, focused, practical"}}
	ts, store := newTestServer(t, gen)
	p := createProject(t, ts)

	resp := postJSON(t, ts.URL+"/api/projects/"+p.ID+"/analyze", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Eventually(t, func() bool {
		stored, err := store.Get(context.Background(), p.ID)
		return err == nil && stored.Analysis != nil && stored.Analysis.Category == "Productivity"
	}, time.Second, 5*time.Millisecond)
}

func TestJunkInputIs422(t *testing.T) {
	ts, _ := newTestServer(t, &stubGenerator{err: generate.ErrJunkInput})
	p := createProject(t, ts)

	resp := postJSON(t, ts.URL+"/api/projects/"+p.ID+"/analyze", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestNamesRequireAnalysis(t *testing.T) {
	ts, _ := newTestServer(t, &stubGenerator{})
	p := createProject(t, ts)

	resp := postJSON(t, ts.URL+"/api/projects/"+p.ID+"/names", `{"count": 6}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestNamesReplaceWorkingSet(t *testing.T) {
	gen := &stubGenerator{
		analysis: listing.Analysis{Category: "Productivity"},
		names:    []listing.GeneratedName{{Text: "TabHarbor", Score: 95, TopPick: true}},
	}
	ts, _ := newTestServer(t, gen)
	p := createProject(t, ts)

	resp := postJSON(t, ts.URL+"/api/projects/"+p.ID+"/analyze", "")
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/projects/"+p.ID+"/names", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got listing.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.NameCandidates, 1)
	assert.Equal(t, "TabHarbor", got.NameCandidates[0].Text)
}

func TestIconReplacesPreviousIcon(t *testing.T) {
	gen := &stubGenerator{
		analysis: listing.Analysis{Category: "Productivity"},
		asset:    listing.Asset{ID: "new", Kind: listing.AssetIcon, Data: "data:image/png;base64,BBBB"},
	}
	ts, store := newTestServer(t, gen)
	p := createProject(t, ts)

	seed, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	seed.Analysis = &listing.Analysis{Category: "Productivity"}
	seed.Assets = []listing.Asset{{ID: "old", Kind: listing.AssetIcon, Data: "data:image/png;base64,AAAA"}}
	require.NoError(t, store.Save(context.Background(), seed))

	resp := postJSON(t, ts.URL+"/api/projects/"+p.ID+"/icon", `{"subject": "a lighthouse"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got listing.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Assets, 1)
	assert.Equal(t, "new", got.Assets[0].ID)
}

func TestDeleteProject(t *testing.T) {
	ts, _ := newTestServer(t, &stubGenerator{})
	p := createProject(t, ts)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/projects/"+p.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(ts.URL + "/api/projects/" + p.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestArchiveDownload(t *testing.T) {
	ts, store := newTestServer(t, &stubGenerator{})
	p := createProject(t, ts)

	seed, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	seed.SelectedName = "TabHarbor"
	seed.SelectedDescription = "Group tabs automatically."
	require.NoError(t, store.Save(context.Background(), seed))

	resp, err := http.Get(ts.URL + "/api/projects/" + p.ID + "/archive")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("content-type"))
	assert.Contains(t, resp.Header.Get("content-disposition"), "TabHarbor.zip")
}

func TestListProjects(t *testing.T) {
	ts, _ := newTestServer(t, &stubGenerator{})
	createProject(t, ts)
	createProject(t, ts)

	resp, err := http.Get(ts.URL + "/api/projects")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var projects []listing.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&projects))
	assert.Len(t, projects, 2)
}

func TestUpdateProjectKeepsPathID(t *testing.T) {
	ts, store := newTestServer(t, &stubGenerator{})
	p := createProject(t, ts)

	update := fmt.Sprintf(`{"id": "spoofed", "name": "Renamed", "input": %q}`, p.Input)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/projects/"+p.ID, bytes.NewBufferString(update))
	require.NoError(t, err)
	req.Header.Set("content-type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Eventually(t, func() bool {
		stored, err := store.Get(context.Background(), p.ID)
		return err == nil && stored.Name == "Renamed"
	}, time.Second, 5*time.Millisecond)
}
