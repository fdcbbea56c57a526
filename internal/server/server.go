// Package server exposes the wizard over HTTP: project CRUD, the
// generation flows, batch rendering, and archive download.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"listing-forge/internal/export"
	"listing-forge/internal/gemini"
	"listing-forge/internal/generate"
	"listing-forge/internal/jsonrepair"
	"listing-forge/internal/listing"
	"listing-forge/internal/project"
)

// Generator is the slice of the generation service the handlers use.
type Generator interface {
	AnalyzeIdea(ctx context.Context, idea string) (listing.Analysis, error)
	GenerateNames(ctx context.Context, a listing.Analysis, count int) ([]listing.GeneratedName, error)
	GenerateShortDescriptions(ctx context.Context, a listing.Analysis, name string, count int) ([]listing.ShortDescription, error)
	GenerateLongDescription(ctx context.Context, a listing.Analysis, name, shortDescription string) (string, error)
	GeneratePrivacyPolicy(ctx context.Context, name string, features []string) (string, error)
	EnhancePrivacyPolicy(ctx context.Context, existing, guidance string) (string, error)
	GenerateBrand(ctx context.Context, a listing.Analysis, name, visualStyle string) (listing.BrandIdentity, error)
	GenerateScreenshotCopy(ctx context.Context, a listing.Analysis, name string, count int) ([]listing.Slide, error)
	BrainstormIconSubject(ctx context.Context, a listing.Analysis) string
	GenerateIcon(ctx context.Context, subject string, brand listing.BrandIdentity) (listing.Asset, error)
	GenerateLogoVariants(ctx context.Context, subject string, brand listing.BrandIdentity) ([]listing.Asset, error)
	GenerateBanner(ctx context.Context, name string, brand listing.BrandIdentity, visualStyle string) (listing.Asset, error)
	DescribeStyle(ctx context.Context, imageDataURL string) (string, error)
}

type Options struct {
	Generator      Generator
	Store          project.Store
	Saver          *project.Saver
	Renderer       *export.Renderer
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

type Server struct {
	gen            Generator
	store          project.Store
	saver          *project.Saver
	renderer       *export.Renderer
	log            *slog.Logger
	requestTimeout time.Duration
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Server{
		gen:            opts.Generator,
		store:          opts.Store,
		saver:          opts.Saver,
		renderer:       opts.Renderer,
		log:            logger,
		requestTimeout: timeout,
	}
}

// Handler builds the routed handler with request logging attached.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", s.handleGetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", s.handleUpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}", s.handleDeleteProject).Methods(http.MethodDelete)

	api.HandleFunc("/projects/{id}/analyze", s.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/names", s.handleNames).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/descriptions", s.handleDescriptions).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/long-description", s.handleLongDescription).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/privacy-policy", s.handlePrivacyPolicy).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/brand", s.handleBrand).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/icon", s.handleIcon).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/logo-variants", s.handleLogoVariants).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/banner", s.handleBanner).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/screenshot-copy", s.handleScreenshotCopy).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/style-reference", s.handleStyleReference).Methods(http.MethodPost)

	api.HandleFunc("/projects/{id}/render", s.handleRender).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/archive", s.handleArchive).Methods(http.MethodGet)

	return withLogging(r, s.log)
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var apiErr *gemini.APIError

	switch {
	case errors.Is(err, project.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, generate.ErrJunkInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errAnalysisRequired):
		status = http.StatusConflict
	case errors.As(err, &apiErr) && apiErr.RateLimited():
		status = http.StatusTooManyRequests
	case errors.Is(err, jsonrepair.ErrMalformedResponse),
		errors.Is(err, jsonrepair.ErrMissingResponse),
		errors.Is(err, gemini.ErrNoImage):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, apiError{Error: err.Error()})
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http", "method", r.Method, "path", r.URL.Path, "dur_ms", time.Since(start).Milliseconds())
	})
}
