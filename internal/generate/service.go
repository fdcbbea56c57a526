// Package generate orchestrates the model flows: analysis, naming,
// descriptions, brand identity, and imagery. It owns retries, response
// repair, and validation; callers get domain values or sentinel errors.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"listing-forge/internal/gemini"
	"listing-forge/internal/jsonrepair"
	"listing-forge/internal/listing"
	"listing-forge/internal/prompts"
	"listing-forge/internal/retry"
)

// ErrJunkInput marks input the model classified as not a product idea.
// Not retried: garbage in stays garbage.
var ErrJunkInput = errors.New("input is not a describable product idea")

// FallbackIconSubject is used when icon brainstorming fails; icon
// generation must never be blocked by a flaky brainstorm call.
const FallbackIconSubject = "a minimal abstract geometric mark"

const analysisAttempts = 3

// logoVariantStyles seeds the four parallel logo generations.
var logoVariantStyles = []string{
	"flat vector, bold silhouette",
	"soft gradient, rounded forms",
	"outlined line art, thin strokes",
	"layered geometric, slight depth",
}

// ModelClient is the slice of the gemini client the service uses.
type ModelClient interface {
	Generate(ctx context.Context, req gemini.Request) (gemini.Response, error)
	GenerateImage(ctx context.Context, req gemini.Request) (gemini.Response, error)
}

type Options struct {
	Client ModelClient
	Policy retry.Policy
	Logger *slog.Logger
}

type Service struct {
	client ModelClient
	policy retry.Policy
	log    *slog.Logger
}

func New(opts Options) *Service {
	policy := opts.Policy
	if policy.MaxRetries == 0 && policy.BaseDelay == 0 && policy.Retryable == nil {
		policy = retry.DefaultPolicy()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		client: opts.Client,
		policy: policy,
		log:    logger,
	}
}

// AnalyzeIdea runs the analysis flow. Transport-level rate limits are
// retried by policy; incomplete output gets up to two extra flow
// attempts with an explicit hint appended to the request.
func (s *Service) AnalyzeIdea(ctx context.Context, idea string) (listing.Analysis, error) {
	prompt := prompts.Analysis(idea)

	var lastErr error
	for attempt := 1; attempt <= analysisAttempts; attempt++ {
		userText := prompt.UserText
		if attempt > 1 {
			userText += prompts.IncompleteRetryHint
		}

		text, err := s.text(ctx, prompts.Prompt{
			Instruction: prompt.Instruction,
			UserText:    userText,
			Schema:      prompt.Schema,
			Temperature: prompt.Temperature,
		})
		if err != nil {
			return listing.Analysis{}, fmt.Errorf("analyze idea: %w", err)
		}

		var raw rawAnalysis
		if err := jsonrepair.Parse(text, &raw); err != nil {
			lastErr = err
			s.log.Warn("analysis response unparseable", "attempt", attempt, "error", err)
			continue
		}
		if raw.IsJunk {
			return listing.Analysis{}, ErrJunkInput
		}
		if !raw.complete() {
			lastErr = fmt.Errorf("analysis incomplete: %w", jsonrepair.ErrMalformedResponse)
			s.log.Warn("analysis response incomplete", "attempt", attempt)
			continue
		}
		return raw.toDomain(), nil
	}

	return listing.Analysis{}, fmt.Errorf("analyze idea: %w", lastErr)
}

// GenerateNames produces a ranked batch of name candidates. Over-long
// candidates are dropped rather than truncated.
func (s *Service) GenerateNames(ctx context.Context, a listing.Analysis, count int) ([]listing.GeneratedName, error) {
	text, err := s.text(ctx, prompts.Names(a, count))
	if err != nil {
		return nil, fmt.Errorf("generate names: %w", err)
	}

	var raw rawNameBatch
	if err := jsonrepair.Parse(text, &raw); err != nil {
		return nil, fmt.Errorf("generate names: %w", err)
	}

	names := make([]listing.GeneratedName, 0, len(raw.Names))
	for _, n := range raw.Names {
		name := strings.TrimSpace(n.Name)
		if name == "" || len([]rune(name)) > listing.MaxTitleLength {
			s.log.Debug("dropping name candidate", "name", name)
			continue
		}
		kind := listing.NameCreative
		if strings.EqualFold(n.Type, string(listing.NameSEO)) {
			kind = listing.NameSEO
		}
		names = append(names, listing.GeneratedName{
			Text:      name,
			Score:     n.Score,
			Reasoning: strings.TrimSpace(n.Reasoning),
			Type:      kind,
		})
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("generate names: no usable candidates: %w", jsonrepair.ErrMalformedResponse)
	}
	return listing.RankNames(names), nil
}

// GenerateShortDescriptions produces a ranked batch of short-description
// candidates, dropping anything at or over the hard limit.
func (s *Service) GenerateShortDescriptions(ctx context.Context, a listing.Analysis, name string, count int) ([]listing.ShortDescription, error) {
	text, err := s.text(ctx, prompts.ShortDescriptions(a, name, count))
	if err != nil {
		return nil, fmt.Errorf("generate short descriptions: %w", err)
	}

	var raw rawDescriptionBatch
	if err := jsonrepair.Parse(text, &raw); err != nil {
		return nil, fmt.Errorf("generate short descriptions: %w", err)
	}

	descs := make([]listing.ShortDescription, 0, len(raw.Descriptions))
	for _, d := range raw.Descriptions {
		body := strings.TrimSpace(d.Text)
		if body == "" || len([]rune(body)) > listing.MaxShortDescriptionLength {
			s.log.Debug("dropping description candidate", "length", len([]rune(body)))
			continue
		}
		descs = append(descs, listing.ShortDescription{
			Text:      body,
			Score:     d.Score,
			Reasoning: strings.TrimSpace(d.Reasoning),
			Keywords:  trimAll(d.Keywords),
		})
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("generate short descriptions: no usable candidates: %w", jsonrepair.ErrMalformedResponse)
	}
	return listing.RankShortDescriptions(descs), nil
}

// GenerateLongDescription returns the full Markdown listing body.
func (s *Service) GenerateLongDescription(ctx context.Context, a listing.Analysis, name, shortDescription string) (string, error) {
	text, err := s.text(ctx, prompts.LongDescription(a, name, shortDescription))
	if err != nil {
		return "", fmt.Errorf("generate long description: %w", err)
	}
	cleaned := strings.TrimSpace(jsonrepair.StripCodeFence(text))
	if cleaned == "" {
		return "", fmt.Errorf("generate long description: %w", jsonrepair.ErrMissingResponse)
	}
	return cleaned, nil
}

// GeneratePrivacyPolicy drafts a policy from the feature list.
func (s *Service) GeneratePrivacyPolicy(ctx context.Context, name string, features []string) (string, error) {
	text, err := s.text(ctx, prompts.PrivacyPolicy(name, features))
	if err != nil {
		return "", fmt.Errorf("generate privacy policy: %w", err)
	}
	cleaned := strings.TrimSpace(jsonrepair.StripCodeFence(text))
	if cleaned == "" {
		return "", fmt.Errorf("generate privacy policy: %w", jsonrepair.ErrMissingResponse)
	}
	return cleaned, nil
}

// EnhancePrivacyPolicy revises an existing policy per user guidance.
func (s *Service) EnhancePrivacyPolicy(ctx context.Context, existing, guidance string) (string, error) {
	text, err := s.text(ctx, prompts.EnhancePrivacyPolicy(existing, guidance))
	if err != nil {
		return "", fmt.Errorf("enhance privacy policy: %w", err)
	}
	cleaned := strings.TrimSpace(jsonrepair.StripCodeFence(text))
	if cleaned == "" {
		return "", fmt.Errorf("enhance privacy policy: %w", jsonrepair.ErrMissingResponse)
	}
	return cleaned, nil
}

// GenerateBrand produces a normalized brand identity. Invalid colors are
// replaced slot-by-slot by defaults, never rejected wholesale.
func (s *Service) GenerateBrand(ctx context.Context, a listing.Analysis, name, visualStyle string) (listing.BrandIdentity, error) {
	text, err := s.text(ctx, prompts.Brand(a, name, visualStyle))
	if err != nil {
		return listing.BrandIdentity{}, fmt.Errorf("generate brand: %w", err)
	}

	var brand listing.BrandIdentity
	if err := jsonrepair.Parse(text, &brand); err != nil {
		return listing.BrandIdentity{}, fmt.Errorf("generate brand: %w", err)
	}
	return listing.NormalizeBrand(brand), nil
}

// GenerateScreenshotCopy returns headline/subheadline/highlight triples.
// A highlight that is not a substring of its headline is cleared.
func (s *Service) GenerateScreenshotCopy(ctx context.Context, a listing.Analysis, name string, count int) ([]listing.Slide, error) {
	text, err := s.text(ctx, prompts.ScreenshotCopy(a, name, count))
	if err != nil {
		return nil, fmt.Errorf("generate screenshot copy: %w", err)
	}

	var raw rawSlideCopyBatch
	if err := jsonrepair.Parse(text, &raw); err != nil {
		return nil, fmt.Errorf("generate screenshot copy: %w", err)
	}
	if len(raw.Slides) == 0 {
		return nil, fmt.Errorf("generate screenshot copy: empty batch: %w", jsonrepair.ErrMalformedResponse)
	}

	slides := make([]listing.Slide, 0, len(raw.Slides))
	for _, rc := range raw.Slides {
		headline := strings.TrimSpace(rc.Headline)
		if headline == "" {
			continue
		}
		highlight := strings.TrimSpace(rc.Highlight)
		if highlight != "" && !strings.Contains(strings.ToLower(headline), strings.ToLower(highlight)) {
			s.log.Debug("clearing non-substring highlight", "headline", headline, "highlight", highlight)
			highlight = ""
		}
		slide := listing.NewSlide(uuid.NewString(), "")
		slide.Headline = headline
		slide.Subheadline = strings.TrimSpace(rc.Subheadline)
		slide.Highlight = highlight
		slides = append(slides, slide)
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("generate screenshot copy: no usable slides: %w", jsonrepair.ErrMalformedResponse)
	}
	return slides, nil
}

// BrainstormIconSubject suggests an icon subject. Best effort only: any
// failure falls back to a neutral subject instead of an error.
func (s *Service) BrainstormIconSubject(ctx context.Context, a listing.Analysis) string {
	text, err := s.text(ctx, prompts.IconSubject(a))
	if err != nil {
		s.log.Warn("icon brainstorm failed, using fallback", "error", err)
		return FallbackIconSubject
	}
	subject := strings.TrimSpace(jsonrepair.StripCodeFence(text))
	subject = strings.Trim(subject, `"'.`)
	if subject == "" || len(subject) > 120 {
		return FallbackIconSubject
	}
	return subject
}

// GenerateIcon renders the main square icon for a subject.
func (s *Service) GenerateIcon(ctx context.Context, subject string, brand listing.BrandIdentity) (listing.Asset, error) {
	prompt := prompts.IconImage(subject, brand)
	dataURL, err := s.image(ctx, prompt, "1:1")
	if err != nil {
		return listing.Asset{}, fmt.Errorf("generate icon: %w", err)
	}
	return listing.Asset{
		ID:     uuid.NewString(),
		Kind:   listing.AssetIcon,
		Data:   dataURL,
		Prompt: prompt.UserText,
	}, nil
}

// GenerateLogoVariants renders four styled variants of the same subject
// in parallel. Any single failure fails the batch; a partial set is
// worse than a retryable error.
func (s *Service) GenerateLogoVariants(ctx context.Context, subject string, brand listing.BrandIdentity) ([]listing.Asset, error) {
	variants := make([]listing.Asset, len(logoVariantStyles))

	g, gctx := errgroup.WithContext(ctx)
	for i, style := range logoVariantStyles {
		g.Go(func() error {
			base := prompts.IconImage(subject, brand)
			prompt := prompts.Prompt{
				UserText:    base.UserText + "\nVariant style: " + style + ".",
				Temperature: base.Temperature,
			}
			dataURL, err := s.image(gctx, prompt, "1:1")
			if err != nil {
				return fmt.Errorf("logo variant %d: %w", i+1, err)
			}
			variants[i] = listing.Asset{
				ID:     uuid.NewString(),
				Kind:   listing.AssetIcon,
				Data:   dataURL,
				Prompt: prompt.UserText,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate logo variants: %w", err)
	}
	return variants, nil
}

// GenerateBanner renders a wide promotional background.
func (s *Service) GenerateBanner(ctx context.Context, name string, brand listing.BrandIdentity, visualStyle string) (listing.Asset, error) {
	prompt := prompts.MarqueeImage(name, brand, visualStyle)
	dataURL, err := s.image(ctx, prompt, "16:9")
	if err != nil {
		return listing.Asset{}, fmt.Errorf("generate banner: %w", err)
	}
	return listing.Asset{
		ID:     uuid.NewString(),
		Kind:   listing.AssetMarquee,
		Data:   dataURL,
		Prompt: prompt.UserText,
	}, nil
}

// DescribeStyle analyzes an uploaded reference image so later
// generations can imitate its look.
func (s *Service) DescribeStyle(ctx context.Context, imageDataURL string) (string, error) {
	input, ok := gemini.DataURLToInput(imageDataURL, "image/png")
	if !ok {
		return "", errors.New("describe style: not a data URL")
	}

	prompt := prompts.StyleReference()
	result, err := retry.Do(ctx, s.policy, func(ctx context.Context) (string, error) {
		resp, err := s.client.Generate(ctx, gemini.Request{
			Instruction: prompt.Instruction,
			Text:        prompt.UserText,
			Images:      []gemini.ImageInput{input},
			Temperature: prompt.Temperature,
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
	if err != nil {
		return "", fmt.Errorf("describe style: %w", err)
	}
	cleaned := strings.TrimSpace(result)
	if cleaned == "" {
		return "", fmt.Errorf("describe style: %w", jsonrepair.ErrMissingResponse)
	}
	return cleaned, nil
}

func (s *Service) text(ctx context.Context, p prompts.Prompt) (string, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (string, error) {
		resp, err := s.client.Generate(ctx, gemini.Request{
			Instruction: p.Instruction,
			Text:        p.UserText,
			Schema:      p.Schema,
			Temperature: p.Temperature,
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
}

func (s *Service) image(ctx context.Context, p prompts.Prompt, aspectRatio string) (string, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (string, error) {
		resp, err := s.client.GenerateImage(ctx, gemini.Request{
			Text:        p.UserText,
			Temperature: p.Temperature,
			AspectRatio: aspectRatio,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Images) == 0 {
			return "", gemini.ErrNoImage
		}
		return resp.Images[0], nil
	})
}
