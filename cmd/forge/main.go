// Command forge runs the whole pipeline headlessly: idea in, store
// submission archive out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"listing-forge/internal/config"
	"listing-forge/internal/export"
	"listing-forge/internal/gemini"
	"listing-forge/internal/generate"
	"listing-forge/internal/httpclient"
	"listing-forge/internal/listing"
	"listing-forge/internal/prompts"
	"listing-forge/internal/retry"
)

func main() {
	idea := flag.String("idea", "", "extension idea as free text")
	ideaFile := flag.String("idea-file", "", "file containing the idea")
	out := flag.String("out", "listing.zip", "output archive path")
	slideCount := flag.Int("slides", 3, "number of marketing screenshots")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	input := strings.TrimSpace(*idea)
	if input == "" && *ideaFile != "" {
		data, err := os.ReadFile(*ideaFile)
		if err != nil {
			fatalf("read idea file: %v", err)
		}
		input = strings.TrimSpace(string(data))
	}
	if input == "" {
		fatalf("an idea is required: pass -idea or -idea-file")
	}

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout(),
	})
	gem := gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	generator := generate.New(generate.Options{
		Client: gem,
		Policy: retry.Policy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay(),
			Retryable:  retry.IsRateLimit,
		},
		Logger: logger,
	})
	renderer := export.New(export.Options{
		Logger:      logger,
		WebP:        cfg.ExportWebP,
		WebPQuality: float32(cfg.ExportWebPQuality),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := run(ctx, generator, renderer, input, *slideCount, logger)
	if err != nil {
		fatalf("pipeline: %v", err)
	}

	archive, err := renderer.BuildArchive(p)
	if err != nil {
		fatalf("archive: %v", err)
	}
	if err := os.WriteFile(*out, archive, 0o644); err != nil {
		fatalf("write archive: %v", err)
	}
	logger.Info("archive written", "path", *out, "bytes", len(archive))
}

// run walks the wizard stages in order, always taking the top-ranked
// candidate.
func run(ctx context.Context, generator *generate.Service, renderer *export.Renderer, input string, slideCount int, logger *slog.Logger) (*listing.Project, error) {
	p := &listing.Project{
		ID:         uuid.NewString(),
		Name:       "forge run",
		Input:      prompts.TruncateIdea(input),
		Background: listing.BackgroundStyle{Kind: listing.BackgroundMesh},
	}

	logger.Info("analyzing idea")
	analysis, err := generator.AnalyzeIdea(ctx, p.Input)
	if err != nil {
		return nil, err
	}
	p.Analysis = &analysis

	logger.Info("generating names")
	names, err := generator.GenerateNames(ctx, analysis, 6)
	if err != nil {
		return nil, err
	}
	p.NameCandidates = names
	p.SelectedName = names[0].Text
	logger.Info("name selected", "name", p.SelectedName, "topPick", names[0].TopPick)

	logger.Info("generating short descriptions")
	descs, err := generator.GenerateShortDescriptions(ctx, analysis, p.SelectedName, 6)
	if err != nil {
		return nil, err
	}
	p.DescriptionCandidates = descs
	p.SelectedDescription = descs[0].Text

	logger.Info("generating long description")
	if p.LongDescription, err = generator.GenerateLongDescription(ctx, analysis, p.SelectedName, p.SelectedDescription); err != nil {
		return nil, err
	}

	logger.Info("generating privacy policy")
	if p.PrivacyPolicy, err = generator.GeneratePrivacyPolicy(ctx, p.SelectedName, analysis.CoreFeatures); err != nil {
		return nil, err
	}

	logger.Info("generating brand identity")
	brand, err := generator.GenerateBrand(ctx, analysis, p.SelectedName, "")
	if err != nil {
		return nil, err
	}
	p.Brand = &brand
	p.VisualStyle = brand.VisualStyle

	subject := generator.BrainstormIconSubject(ctx, analysis)
	logger.Info("generating icon", "subject", subject)
	icon, err := generator.GenerateIcon(ctx, subject, brand)
	if err != nil {
		return nil, err
	}
	p.Assets = append(p.Assets, icon)

	logger.Info("generating banner")
	banner, err := generator.GenerateBanner(ctx, p.SelectedName, brand, p.VisualStyle)
	if err != nil {
		return nil, err
	}
	p.Assets = append(p.Assets, banner)

	logger.Info("generating screenshot copy")
	slides, err := generator.GenerateScreenshotCopy(ctx, analysis, p.SelectedName, slideCount)
	if err != nil {
		return nil, err
	}
	// Headless runs have no real screenshots; the banner backs each
	// slide so the render still carries brand imagery.
	for i := range slides {
		slides[i].SourceImage = banner.Data
		slides[i].Mode = listing.ModeLogo
	}
	p.Screenshots = slides

	marquee := listing.NewSlide(uuid.NewString(), slides[0].Template)
	marquee.Headline = slides[0].Headline
	marquee.Subheadline = slides[0].Subheadline
	marquee.Highlight = slides[0].Highlight
	marquee.SourceImage = banner.Data
	marquee.Mode = listing.ModeLogo
	p.Marquees = []listing.Slide{marquee}

	logger.Info("rendering")
	report, err := renderer.RenderAll(ctx, p)
	if err != nil {
		return nil, err
	}
	if report.Failed() {
		for id, msg := range report.Failures {
			logger.Warn("slide failed", "slide", id, "error", msg)
		}
	}
	logger.Info("rendered", "count", report.Rendered)

	return p, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
