package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"listing-forge/internal/listing"
	"listing-forge/internal/prompts"
)

const maxBodyBytes = 32 << 20 // uploaded screenshots travel as data URLs

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Input string `json:"input"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if strings.TrimSpace(body.Input) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "input is required"})
		return
	}

	p := &listing.Project{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(body.Name),
		Input:      prompts.TruncateIdea(strings.TrimSpace(body.Input)),
		Background: listing.BackgroundStyle{Kind: listing.BackgroundSolid},
	}
	if p.Name == "" {
		p.Name = "Untitled project"
	}
	if err := s.store.Save(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateProject replaces the whole document. The client owns the
// working state; the server persists it with last-write-wins semantics.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	var p listing.Project
	if err := decodeBody(w, r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	p.ID = id

	s.saver.Queue(&p)
	writeJSON(w, http.StatusOK, &p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		analysis, err := s.gen.AnalyzeIdea(ctx, p.Input)
		if err != nil {
			return err
		}
		p.Analysis = &analysis
		return nil
	})
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count int `json:"count"`
	}
	_ = decodeBody(w, r, &body)

	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		analysis, err := requireAnalysis(p)
		if err != nil {
			return err
		}
		names, err := s.gen.GenerateNames(ctx, analysis, body.Count)
		if err != nil {
			return err
		}
		// A fresh batch replaces the working set.
		p.NameCandidates = names
		return nil
	})
}

func (s *Server) handleDescriptions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count int `json:"count"`
	}
	_ = decodeBody(w, r, &body)

	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		analysis, err := requireAnalysis(p)
		if err != nil {
			return err
		}
		descs, err := s.gen.GenerateShortDescriptions(ctx, analysis, p.SelectedName, body.Count)
		if err != nil {
			return err
		}
		p.DescriptionCandidates = descs
		return nil
	})
}

func (s *Server) handleLongDescription(w http.ResponseWriter, r *http.Request) {
	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		analysis, err := requireAnalysis(p)
		if err != nil {
			return err
		}
		long, err := s.gen.GenerateLongDescription(ctx, analysis, p.SelectedName, p.SelectedDescription)
		if err != nil {
			return err
		}
		p.LongDescription = long
		return nil
	})
}

func (s *Server) handlePrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Guidance string `json:"guidance"`
	}
	_ = decodeBody(w, r, &body)

	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		if guidance := strings.TrimSpace(body.Guidance); guidance != "" && p.PrivacyPolicy != "" {
			revised, err := s.gen.EnhancePrivacyPolicy(ctx, p.PrivacyPolicy, guidance)
			if err != nil {
				return err
			}
			p.PrivacyPolicy = revised
			return nil
		}

		analysis, err := requireAnalysis(p)
		if err != nil {
			return err
		}
		policy, err := s.gen.GeneratePrivacyPolicy(ctx, p.SelectedName, analysis.CoreFeatures)
		if err != nil {
			return err
		}
		p.PrivacyPolicy = policy
		return nil
	})
}

func (s *Server) handleBrand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VisualStyle string `json:"visualStyle"`
	}
	_ = decodeBody(w, r, &body)

	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		analysis, err := requireAnalysis(p)
		if err != nil {
			return err
		}
		if style := strings.TrimSpace(body.VisualStyle); style != "" {
			p.VisualStyle = style
		}
		brand, err := s.gen.GenerateBrand(ctx, analysis, p.SelectedName, p.VisualStyle)
		if err != nil {
			return err
		}
		p.Brand = &brand
		return nil
	})
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject string `json:"subject"`
	}
	_ = decodeBody(w, r, &body)

	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		subject := strings.TrimSpace(body.Subject)
		if subject == "" {
			analysis, err := requireAnalysis(p)
			if err != nil {
				return err
			}
			subject = s.gen.BrainstormIconSubject(ctx, analysis)
		}

		asset, err := s.gen.GenerateIcon(ctx, subject, projectBrand(p))
		if err != nil {
			return err
		}
		replaceAsset(p, asset)
		return nil
	})
}

func (s *Server) handleLogoVariants(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject string `json:"subject"`
	}
	_ = decodeBody(w, r, &body)

	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		subject := strings.TrimSpace(body.Subject)
		if subject == "" {
			analysis, err := requireAnalysis(p)
			if err != nil {
				return err
			}
			subject = s.gen.BrainstormIconSubject(ctx, analysis)
		}

		variants, err := s.gen.GenerateLogoVariants(ctx, subject, projectBrand(p))
		if err != nil {
			return err
		}
		p.Assets = append(p.Assets, variants...)
		return nil
	})
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		asset, err := s.gen.GenerateBanner(ctx, p.SelectedName, projectBrand(p), p.VisualStyle)
		if err != nil {
			return err
		}
		p.Assets = append(p.Assets, asset)
		return nil
	})
}

func (s *Server) handleScreenshotCopy(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count int `json:"count"`
	}
	_ = decodeBody(w, r, &body)

	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		analysis, err := requireAnalysis(p)
		if err != nil {
			return err
		}
		slides, err := s.gen.GenerateScreenshotCopy(ctx, analysis, p.SelectedName, body.Count)
		if err != nil {
			return err
		}
		p.Screenshots = slides
		return nil
	})
}

func (s *Server) handleStyleReference(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Image string `json:"image"` // data URL
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	s.withProject(w, r, func(ctx context.Context, p *listing.Project) error {
		style, err := s.gen.DescribeStyle(ctx, body.Image)
		if err != nil {
			return err
		}
		p.VisualStyle = style
		return nil
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	report, err := s.renderer.RenderAll(ctx, p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"project":  p,
		"rendered": report.Rendered,
		"failures": report.Failures,
	})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := s.renderer.BuildArchive(p)
	if err != nil {
		s.writeError(w, err)
		return
	}

	name := strings.TrimSpace(p.SelectedName)
	if name == "" {
		name = "listing"
	}
	w.Header().Set("content-type", "application/zip")
	w.Header().Set("content-disposition", fmt.Sprintf("attachment; filename=%q", name+".zip"))
	_, _ = w.Write(data)
}

// withProject loads the project, runs the mutation under the request
// timeout, queues a save, and writes the updated document back.
func (s *Server) withProject(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, p *listing.Project) error) {
	p, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	if err := fn(ctx, p); err != nil {
		s.writeError(w, err)
		return
	}

	// Flow results persist synchronously so the next request sees them;
	// the debounced saver is reserved for rapid document edits.
	if err := s.store.Save(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

var errAnalysisRequired = errors.New("project has no analysis yet")

func requireAnalysis(p *listing.Project) (listing.Analysis, error) {
	if p.Analysis == nil {
		return listing.Analysis{}, errAnalysisRequired
	}
	return *p.Analysis, nil
}

func projectBrand(p *listing.Project) listing.BrandIdentity {
	if p.Brand != nil {
		return *p.Brand
	}
	return listing.DefaultBrand()
}

// replaceAsset swaps out any existing asset of the same kind; a fresh
// icon supersedes the old one rather than accumulating.
func replaceAsset(p *listing.Project, asset listing.Asset) {
	kept := p.Assets[:0]
	for _, a := range p.Assets {
		if a.Kind != asset.Kind {
			kept = append(kept, a)
		}
	}
	p.Assets = append(kept, asset)
}
