// Package gemini is a thin REST client for the Gemini generateContent
// API, covering text generation with optional structured-output schemas
// and inline image generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

const (
	defaultTextModel  = "gemini-3-pro-preview"
	defaultImageModel = "gemini-2.5-flash-image"
)

// ErrNoImage is returned when an image request yields no inline payload.
var ErrNoImage = errors.New("model produced no image")

// APIError is a non-2xx response from the API. The status code is kept
// inspectable so the retry layer can classify rate limiting.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API %s: %s", e.Status, e.Body)
}

// RateLimited reports whether this error is a slow-down signal.
func (e *APIError) RateLimited() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	body := strings.ToLower(e.Body)
	return strings.Contains(body, "429") || strings.Contains(body, "quota")
}

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

// Generate runs one text-model call. A Schema switches the model into
// strict JSON output mode; the raw text is still returned untouched so
// the repair layer sees exactly what the model said.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	generationConfig := generationConfig{Temperature: req.Temperature}
	if generationConfig.Temperature == 0 {
		generationConfig.Temperature = 0.7
	}
	if req.Schema != nil {
		generationConfig.ResponseMimeType = "application/json"
		generationConfig.ResponseJSONSchema = req.Schema
	}

	payload := generateContentRequest{
		Contents:         []content{{Role: "user", Parts: buildParts(req)}},
		GenerationConfig: generationConfig,
	}
	if instruction := strings.TrimSpace(req.Instruction); instruction != "" {
		payload.SystemInstruction = &content{Role: "user", Parts: []part{{Text: instruction}}}
	}

	resp, err := c.generateContent(ctx, c.textModel, payload)
	if err != nil && payload.GenerationConfig.ResponseJSONSchema != nil {
		// Some model versions reject responseJsonSchema; fall back to
		// plain JSON mime mode and let the repair layer cope.
		if isUnknownFieldError(err, "responseJsonSchema") {
			payload.GenerationConfig.ResponseJSONSchema = nil
			return c.generateContent(ctx, c.textModel, payload)
		}
	}
	return resp, err
}

// GenerateImage runs one image-model call and requires at least one
// inline image back.
func (c *Client) GenerateImage(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Response{}, errors.New("image prompt is empty")
	}

	generationConfig := generationConfig{
		ResponseModalities: []string{"IMAGE"},
	}
	if req.AspectRatio != "" {
		generationConfig.ImageConfig = &imageConfig{AspectRatio: req.AspectRatio}
	}

	payload := generateContentRequest{
		Contents:         []content{{Role: "user", Parts: buildParts(req)}},
		GenerationConfig: generationConfig,
	}

	resp, err := c.generateContent(ctx, c.imageModel, payload)
	if err != nil && payload.GenerationConfig.ImageConfig != nil {
		if isUnknownFieldError(err, "imageConfig") {
			payload.GenerationConfig.ImageConfig = nil
			resp, err = c.generateContent(ctx, c.imageModel, payload)
		}
	}
	if err != nil {
		return Response{}, err
	}
	if len(resp.Images) == 0 {
		return Response{}, ErrNoImage
	}
	return resp, nil
}

func buildParts(req Request) []part {
	parts := []part{{Text: req.Text}}
	for _, img := range req.Images {
		parts = append(parts, part{
			InlineData: &blob{
				Data:     stripDataURLPrefix(img.DataBase64),
				MimeType: img.MimeType,
			},
		})
	}
	return parts
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (Response, error) {
	if c.httpClient == nil {
		return Response{}, errors.New("http client is nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       strings.TrimSpace(string(rawBody)),
		}
		c.logger.Warn("gemini call failed", "model", model, "status", httpResp.StatusCode)
		return Response{}, apiErr
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	text, images := extractParts(decoded)
	c.logger.Debug("gemini call ok", "model", model, "text_len", len(text), "images", len(images))

	return Response{Text: text, Images: images}, nil
}

func extractParts(resp generateContentResponse) (string, []string) {
	if len(resp.Candidates) == 0 {
		return "", nil
	}

	var textBuilder strings.Builder
	var images []string

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" && p.InlineData.MimeType != "" {
			images = append(images, fmt.Sprintf("data:%s;base64,%s", p.InlineData.MimeType, p.InlineData.Data))
		}
	}

	return textBuilder.String(), images
}

type generateContentRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature        float64        `json:"temperature,omitempty"`
	ResponseModalities []string       `json:"responseModalities,omitempty"`
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseJSONSchema map[string]any `json:"responseJsonSchema,omitempty"`
	ImageConfig        *imageConfig   `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

var dataURLRegex = regexp.MustCompile(`^data:([^;]+);base64,`)

// DataURLToInput converts a data URL into an inline image input.
func DataURLToInput(dataURL string, fallbackMime string) (ImageInput, bool) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return ImageInput{}, false
	}

	mime := fallbackMime
	if matches := dataURLRegex.FindStringSubmatch(dataURL); len(matches) == 2 {
		mime = matches[1]
	}

	data := stripDataURLPrefix(dataURL)
	if data == "" {
		return ImageInput{}, false
	}

	return ImageInput{DataBase64: data, MimeType: mime}, true
}

func stripDataURLPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}
