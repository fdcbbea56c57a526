package gemini

// ImageInput is an inline image attached to a request, e.g. a style
// reference for logo transfer or a raw screenshot for copy analysis.
type ImageInput struct {
	DataBase64 string
	MimeType   string
}

// Request is one generation call. Schema, when set, asks the model for
// strict JSON matching the given raw JSON schema.
type Request struct {
	Instruction string
	Text        string
	Images      []ImageInput
	Schema      map[string]any
	Temperature float64
	AspectRatio string
}

// Response carries the model's text output and any inline images as
// data URLs, in part order.
type Response struct {
	Text   string
	Images []string
}
