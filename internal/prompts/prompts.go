// Package prompts maps each content type to the instruction block, user
// message, and structured-output schema sent to the model. It is a pure
// catalog: no state, no I/O.
package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"listing-forge/internal/listing"
)

// Prompt is one assembled model request.
type Prompt struct {
	Instruction string
	UserText    string
	Schema      map[string]any
	Temperature float64
}

const (
	// TruncationMarker is appended when an oversized idea is cut down
	// before being sent to the model.
	TruncationMarker = "...(truncated)"

	// IncompleteRetryHint is appended to the user message when the
	// analysis flow re-issues a request after incomplete output.
	IncompleteRetryHint = "\n\nIMPORTANT: your previous output was incomplete. Fill EVERY field with substantive content; no empty strings, no empty arrays."
)

const copywriterPersona = `You are a senior product marketer who writes browser-extension store listings that convert.
Rules:
- Plain, confident language. No hype words ("revolutionary", "game-changing", "unleash").
- Respect every character limit exactly; responses violating limits are discarded.
- When JSON is requested, return ONLY JSON. No prose, no Markdown fences.`

const brandDesignerPersona = `You are a brand designer producing store-ready visual identities.
Rules:
- Every color is a 6-digit hex value: "#" followed by exactly six hex digits.
- Never use alpha channels, shorthand hex, or pure #000000.
- Pick real, widely available font families.
- Return ONLY JSON.`

// iconClicheBans keeps the model away from stock extension-icon imagery.
var iconClicheBans = []string{
	"puzzle piece", "light bulb", "rocket ship", "gear or cog",
	"generic shield", "magnifying glass", "globe with orbit",
	"brain with circuits", "handshake",
}

// TruncateIdea bounds free-text input before it reaches the model.
func TruncateIdea(idea string) string {
	if len(idea) <= listing.MaxIdeaLength {
		return idea
	}
	// Back off to a rune boundary so the cut never emits invalid UTF-8.
	cut := listing.MaxIdeaLength
	for cut > 0 && !utf8.RuneStart(idea[cut]) {
		cut--
	}
	return idea[:cut] + TruncationMarker
}

// Analysis builds the idea-analysis request.
func Analysis(idea string) Prompt {
	var b strings.Builder
	b.WriteString(copywriterPersona)
	b.WriteString("\n\nTASK: Analyze a browser-extension idea for store positioning.\n")
	b.WriteString("- category: the single best store category.\n")
	b.WriteString("- targetAudience: who installs this, in one sentence.\n")
	b.WriteString("- coreFeatures: 3-6 concrete features.\n")
	b.WriteString("- keywords: 4-8 primary search keywords.\n")
	b.WriteString("- toneAdjectives: exactly 3-5 adjectives describing the voice.\n")
	b.WriteString("- seoStrategy, marketAnalysis, customerPsychology: 2-4 sentences each, specific to this idea.\n")
	b.WriteString("- isJunk: true ONLY if the input is not a describable product idea (keyboard mashing, spam, empty filler). When isJunk is true, other fields may be empty.\n")

	return Prompt{
		Instruction: b.String(),
		UserText:    TruncateIdea(idea),
		Schema:      analysisSchema(),
		Temperature: 0.4,
	}
}

// Names builds the name-candidate request.
func Names(a listing.Analysis, count int) Prompt {
	if count <= 0 {
		count = 6
	}

	var b strings.Builder
	b.WriteString(copywriterPersona)
	fmt.Fprintf(&b, "\n\nTASK: Propose %d extension names.\n", count)
	fmt.Fprintf(&b, "- Hard limit %d characters per name; aim for %d or fewer.\n", listing.MaxTitleLength, listing.RecommendedTitleLength)
	b.WriteString("- Mix type SEO (keyword-led, findable) and CREATIVE (brandable, memorable).\n")
	b.WriteString("- score: 0-100 for store fit. reasoning: one sentence.\n")
	b.WriteString("- Avoid clichés: no \"Pro\", \"Plus\", \"AI\" suffixes unless the idea demands it.\n")

	return Prompt{
		Instruction: b.String(),
		UserText:    analysisContext(a),
		Schema:      namesSchema(),
		Temperature: 0.9,
	}
}

// ShortDescriptions builds the short-description candidate request.
func ShortDescriptions(a listing.Analysis, name string, count int) Prompt {
	if count <= 0 {
		count = 6
	}

	var b strings.Builder
	b.WriteString(copywriterPersona)
	fmt.Fprintf(&b, "\n\nTASK: Write %d short store descriptions for the extension %q.\n", count, name)
	fmt.Fprintf(&b, "- STRICTLY under %d characters each. Count before answering.\n", listing.MaxShortDescriptionLength+1)
	b.WriteString("- Lead with the outcome for the user, not the mechanism.\n")
	b.WriteString("- keywords: which primary keywords the variant uses.\n")
	b.WriteString("- score: 0-100. reasoning: one sentence.\n")

	return Prompt{
		Instruction: b.String(),
		UserText:    analysisContext(a),
		Schema:      shortDescriptionsSchema(),
		Temperature: 0.8,
	}
}

// LongDescription builds the free-text long-description request.
func LongDescription(a listing.Analysis, name, shortDescription string) Prompt {
	var b strings.Builder
	b.WriteString(copywriterPersona)
	b.WriteString("\n\nTASK: Write the full store-listing description in Markdown.\n")
	b.WriteString("- Structure: hook paragraph, feature list with short bold leads, a \"why users switch\" paragraph, closing call to action.\n")
	b.WriteString("- 200-350 words. No headings above level 3. No code fences.\n")

	user := fmt.Sprintf("Extension: %s\nShort description: %s\n\n%s", name, shortDescription, analysisContext(a))
	return Prompt{Instruction: b.String(), UserText: user, Temperature: 0.7}
}

// PrivacyPolicy builds the privacy-policy generation request.
func PrivacyPolicy(name string, features []string) Prompt {
	var b strings.Builder
	b.WriteString(copywriterPersona)
	b.WriteString("\n\nTASK: Draft a plain-language privacy policy for a browser extension.\n")
	b.WriteString("- Cover: data collected (assume minimal unless a feature implies otherwise), storage, third parties, user rights, contact.\n")
	b.WriteString("- Markdown, short sections. No legal boilerplate walls.\n")

	user := fmt.Sprintf("Extension: %s\nFeatures:\n- %s", name, strings.Join(features, "\n- "))
	return Prompt{Instruction: b.String(), UserText: user, Temperature: 0.3}
}

// EnhancePrivacyPolicy builds the policy-revision request.
func EnhancePrivacyPolicy(existing, guidance string) Prompt {
	var b strings.Builder
	b.WriteString(copywriterPersona)
	b.WriteString("\n\nTASK: Revise the privacy policy below per the guidance. Keep structure and tone; return the full revised document.\n")

	user := fmt.Sprintf("GUIDANCE: %s\n\nCURRENT POLICY:\n%s", guidance, existing)
	return Prompt{Instruction: b.String(), UserText: user, Temperature: 0.3}
}

// Brand builds the brand-identity request.
func Brand(a listing.Analysis, name, visualStyle string) Prompt {
	var b strings.Builder
	b.WriteString(brandDesignerPersona)
	b.WriteString("\n\nTASK: Design a brand identity for the extension.\n")
	b.WriteString("- palette: primary1, primary2, accent1, accent2, neutralLight, neutralMid, neutralDark, highlight.\n")
	b.WriteString("- Primaries carry the brand; accents are for emphasis; neutrals must work as text/background pairs.\n")
	b.WriteString("- typography: headingFont, bodyFont, one-sentence reasoning.\n")
	b.WriteString("- visualStyle: 2-3 sentences describing imagery direction.\n")

	user := fmt.Sprintf("Extension: %s\nRequested direction: %s\n\n%s", name, visualStyle, analysisContext(a))
	return Prompt{Instruction: b.String(), UserText: user, Schema: brandSchema(), Temperature: 0.6}
}

// ScreenshotCopy builds the headline/subheadline request for slides.
func ScreenshotCopy(a listing.Analysis, name string, count int) Prompt {
	if count <= 0 {
		count = 3
	}

	var b strings.Builder
	b.WriteString(copywriterPersona)
	fmt.Fprintf(&b, "\n\nTASK: Write copy for %d marketing screenshots of %q.\n", count, name)
	b.WriteString("- headline: max 6 words, benefit-first.\n")
	b.WriteString("- subheadline: one supporting sentence.\n")
	b.WriteString("- highlight: the 1-3 word phrase inside the headline to emphasize; it MUST be an exact substring of the headline.\n")

	return Prompt{
		Instruction: b.String(),
		UserText:    analysisContext(a),
		Schema:      screenshotCopySchema(),
		Temperature: 0.8,
	}
}

// IconSubject builds the icon-subject brainstorming request. The flow
// treats failures as best-effort, so this stays a cheap free-text call.
func IconSubject(a listing.Analysis) Prompt {
	var b strings.Builder
	b.WriteString(copywriterPersona)
	b.WriteString("\n\nTASK: Name ONE concrete visual subject for this extension's icon.\n")
	b.WriteString("- A single noun phrase, max 8 words re-usable inside an image prompt.\n")
	b.WriteString("- BANNED subjects: " + strings.Join(iconClicheBans, ", ") + ".\n")
	b.WriteString("- Answer with the phrase only. No JSON, no explanation.\n")

	return Prompt{Instruction: b.String(), UserText: analysisContext(a), Temperature: 1.0}
}

// IconImage builds the final icon image prompt from a brainstormed
// subject and the brand palette.
func IconImage(subject string, brand listing.BrandIdentity) Prompt {
	var b strings.Builder
	b.WriteString("A modern app icon of ")
	b.WriteString(subject)
	b.WriteString(". Flat vector style, bold silhouette, centered on a solid background.\n")
	fmt.Fprintf(&b, "Primary color %s, accent %s, background %s.\n",
		brand.Palette.Primary1, brand.Palette.Accent1, brand.Palette.NeutralDark)
	b.WriteString("No text, no letters, no watermark, no gradient banding, no photorealism.")

	return Prompt{UserText: b.String(), Temperature: 0.9}
}

// MarqueeImage builds the promotional banner prompt.
func MarqueeImage(name string, brand listing.BrandIdentity, visualStyle string) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "A wide promotional banner background for a browser extension called %q.\n", name)
	b.WriteString("Abstract, soft shapes with generous negative space for overlaid text.\n")
	fmt.Fprintf(&b, "Palette: %s, %s, %s on %s.\n",
		brand.Palette.Primary1, brand.Palette.Primary2, brand.Palette.Accent1, brand.Palette.NeutralDark)
	if visualStyle != "" {
		b.WriteString("Style direction: " + visualStyle + "\n")
	}
	b.WriteString("No text, no logos, no UI chrome.")

	return Prompt{UserText: b.String(), Temperature: 0.9}
}

// StyleReference builds the style-transfer analysis request for an
// uploaded reference image.
func StyleReference() Prompt {
	var b strings.Builder
	b.WriteString(brandDesignerPersona)
	b.WriteString("\n\nTASK: Describe the attached image's visual style so another generation can imitate it.\n")
	b.WriteString("- Cover palette, lighting, texture, mood, composition. 3-4 sentences, no JSON.\n")

	return Prompt{Instruction: b.String(), UserText: "Describe this image's style.", Temperature: 0.4}
}

func analysisContext(a listing.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", a.Category)
	fmt.Fprintf(&b, "Audience: %s\n", a.TargetAudience)
	fmt.Fprintf(&b, "Features: %s\n", strings.Join(a.CoreFeatures, "; "))
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(a.Keywords, ", "))
	fmt.Fprintf(&b, "Tone: %s\n", a.Tone)
	if a.SEOStrategy != "" {
		fmt.Fprintf(&b, "SEO strategy: %s\n", a.SEOStrategy)
	}
	return strings.TrimSpace(b.String())
}
