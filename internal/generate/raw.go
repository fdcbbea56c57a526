package generate

import (
	"strings"

	"listing-forge/internal/listing"
)

// Boundary types mirror the model's structured output before validation
// turns it into domain values.

type rawAnalysis struct {
	Category           string   `json:"category"`
	TargetAudience     string   `json:"targetAudience"`
	CoreFeatures       []string `json:"coreFeatures"`
	Keywords           []string `json:"keywords"`
	ToneAdjectives     []string `json:"toneAdjectives"`
	SEOStrategy        string   `json:"seoStrategy"`
	MarketAnalysis     string   `json:"marketAnalysis"`
	CustomerPsychology string   `json:"customerPsychology"`
	IsJunk             bool     `json:"isJunk"`
}

// complete reports whether the model filled every field the flow needs.
func (r rawAnalysis) complete() bool {
	return strings.TrimSpace(r.Category) != "" &&
		strings.TrimSpace(r.TargetAudience) != "" &&
		len(r.CoreFeatures) > 0 &&
		len(r.Keywords) > 0 &&
		len(r.ToneAdjectives) > 0 &&
		strings.TrimSpace(r.SEOStrategy) != "" &&
		strings.TrimSpace(r.MarketAnalysis) != "" &&
		strings.TrimSpace(r.CustomerPsychology) != ""
}

func (r rawAnalysis) toDomain() listing.Analysis {
	return listing.Analysis{
		Category:           strings.TrimSpace(r.Category),
		TargetAudience:     strings.TrimSpace(r.TargetAudience),
		CoreFeatures:       trimAll(r.CoreFeatures),
		Keywords:           trimAll(r.Keywords),
		Tone:               strings.Join(trimAll(r.ToneAdjectives), ", "),
		SEOStrategy:        strings.TrimSpace(r.SEOStrategy),
		MarketAnalysis:     strings.TrimSpace(r.MarketAnalysis),
		CustomerPsychology: strings.TrimSpace(r.CustomerPsychology),
	}
}

type rawName struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

type rawNameBatch struct {
	Names []rawName `json:"names"`
}

type rawDescription struct {
	Text      string   `json:"text"`
	Keywords  []string `json:"keywords"`
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
}

type rawDescriptionBatch struct {
	Descriptions []rawDescription `json:"descriptions"`
}

type rawSlideCopy struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	Highlight   string `json:"highlight"`
}

type rawSlideCopyBatch struct {
	Slides []rawSlideCopy `json:"slides"`
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
