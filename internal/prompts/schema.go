package prompts

// Response schemas are raw JSON-schema maps passed straight through to
// the model's structured-output config.

func analysisSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category":       map[string]any{"type": "string"},
			"targetAudience": map[string]any{"type": "string"},
			"coreFeatures": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"keywords": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"toneAdjectives": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 3,
				"maxItems": 5,
			},
			"seoStrategy":        map[string]any{"type": "string"},
			"marketAnalysis":     map[string]any{"type": "string"},
			"customerPsychology": map[string]any{"type": "string"},
			"isJunk":             map[string]any{"type": "boolean"},
		},
		"required": []string{"category", "targetAudience", "coreFeatures", "keywords", "toneAdjectives", "isJunk"},
	}
}

func namesSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"names": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":      map[string]any{"type": "string"},
						"type":      map[string]any{"type": "string", "enum": []string{"SEO", "CREATIVE"}},
						"score":     map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
						"reasoning": map[string]any{"type": "string"},
					},
					"required": []string{"name", "type", "score", "reasoning"},
				},
			},
		},
		"required": []string{"names"},
	}
}

func shortDescriptionsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"descriptions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{"type": "string"},
						"keywords": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"score":     map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
						"reasoning": map[string]any{"type": "string"},
					},
					"required": []string{"text", "score", "reasoning"},
				},
			},
		},
		"required": []string{"descriptions"},
	}
}

func brandSchema() map[string]any {
	hex := map[string]any{"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"palette": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"primary1":     hex,
					"primary2":     hex,
					"accent1":      hex,
					"accent2":      hex,
					"neutralLight": hex,
					"neutralMid":   hex,
					"neutralDark":  hex,
					"highlight":    hex,
				},
				"required": []string{"primary1", "primary2", "accent1", "accent2", "neutralLight", "neutralMid", "neutralDark", "highlight"},
			},
			"typography": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"headingFont": map[string]any{"type": "string"},
					"bodyFont":    map[string]any{"type": "string"},
					"reasoning":   map[string]any{"type": "string"},
				},
				"required": []string{"headingFont", "bodyFont"},
			},
			"visualStyle": map[string]any{"type": "string"},
		},
		"required": []string{"palette", "typography", "visualStyle"},
	}
}

func screenshotCopySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"slides": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"headline":    map[string]any{"type": "string"},
						"subheadline": map[string]any{"type": "string"},
						"highlight":   map[string]any{"type": "string"},
					},
					"required": []string{"headline", "subheadline"},
				},
			},
		},
		"required": []string{"slides"},
	}
}
