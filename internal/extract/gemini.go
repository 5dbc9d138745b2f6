package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/starford/cardex/internal/apperr"
)

const (
	// DefaultBaseURL is the Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the vision model used for extraction.
	DefaultModel = "gemini-2.5-flash"

	promptFrontOnly = "Extract the information from this business card. " +
		"If a field is not found, return an empty string for it. " +
		"Strictly follow the provided schema."
	promptFrontAndBack = "Extract the information from this business card, " +
		"considering the front (first image) and the back (second image). " +
		"If a field is not found, return an empty string for it. " +
		"Strictly follow the provided schema."
)

// Gemini calls the Gemini generateContent REST API with a structured-output
// schema. One attempt per Extract call; retries are the caller's concern.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	hc      *http.Client
}

// NewGemini creates a Gemini extractor. Empty model or baseURL fall back to
// the defaults; baseURL is overridable for tests.
func NewGemini(apiKey, model, baseURL string, timeout time.Duration) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	Text       string            `json:"text,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string        `json:"responseMimeType"`
	ResponseSchema   *geminiSchema `json:"responseSchema"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// fieldNames is the fixed set of keys the response object must carry.
var fieldNames = []string{"name", "company", "title", "phone", "email", "website", "address"}

func responseSchema() *geminiSchema {
	props := make(map[string]geminiSchema, len(fieldNames))
	for _, n := range fieldNames {
		props[n] = geminiSchema{Type: "STRING"}
	}
	return &geminiSchema{Type: "OBJECT", Properties: props, Required: fieldNames}
}

// Extract sends the front (and optional back) image to the vision service
// and returns the normalized contact fields. Any failure (transport,
// malformed response, schema violation) wraps apperr.ErrExtraction; no
// partial result is ever returned.
func (g *Gemini) Extract(ctx context.Context, front, back string) (Fields, error) {
	parts := []geminiPart{
		{InlineData: &geminiInlineData{MIMEType: "image/jpeg", Data: front}},
	}
	prompt := promptFrontOnly
	if back != "" {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MIMEType: "image/jpeg", Data: back}})
		prompt = promptFrontAndBack
	}
	parts = append(parts, geminiPart{Text: prompt})

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: marshal request: %v", apperr.ErrExtraction, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Fields{}, fmt.Errorf("%w: build request: %v", apperr.ErrExtraction, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.hc.Do(req)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Fields{}, fmt.Errorf("%w: read response: %v", apperr.ErrExtraction, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Fields{}, fmt.Errorf("%w: status %d", apperr.ErrExtraction, resp.StatusCode)
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return Fields{}, fmt.Errorf("%w: decode response: %v", apperr.ErrExtraction, err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return Fields{}, fmt.Errorf("%w: empty response", apperr.ErrExtraction)
	}

	// The candidate text is itself a JSON object constrained by the schema.
	// Unmarshaling into Fields coerces absent or null keys to "".
	var fields Fields
	if err := json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), &fields); err != nil {
		return Fields{}, fmt.Errorf("%w: decode fields: %v", apperr.ErrExtraction, err)
	}
	return fields, nil
}
