package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-3-flash-preview"

// GeminiOptions configures the Gemini tips client. BaseURL and HTTPClient are
// optional and default to the SDK's endpoint and transport.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient generates coach tips through the Gemini generateContent API.
type GeminiClient struct {
	Model  string
	client *genai.Client
}

// NewGeminiClient builds a client for the Gemini API backend. The key is sent
// as a request header by the SDK, never in the URL.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, externalError(errors.New("no api key"), "gemini is not configured")
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, externalError(err, "create gemini client")
	}
	return &GeminiClient{Model: model, client: client}, nil
}

var tipsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"tips": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "3 tips singkat dan motivasi",
		},
		"motivation": {
			Type:        genai.TypeString,
			Description: "Kalimat motivasi pelatih",
		},
	},
	Required:         []string{"tips", "motivation"},
	PropertyOrdering: []string{"tips", "motivation"},
}

func tipsPrompt(req TipsRequest) string {
	return fmt.Sprintf("Berikan 3 tips singkat dan motivasi untuk pemain sepak bola dengan posisi %s.\n"+
		"Pemain ini bernama %s dan saat ini memiliki %d poin di komunitas.\n"+
		"Gunakan gaya bahasa pelatih sepak bola yang bersemangat namun profesional dalam Bahasa Indonesia.",
		req.Position, req.Name, req.Points)
}

func tipsConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   tipsSchema,
	}
}

// parseTips decodes the structured JSON answer returned by the model.
func parseTips(text string) (*Tips, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no response text received from model")
	}
	var tips Tips
	if err := json.Unmarshal([]byte(text), &tips); err != nil {
		return nil, fmt.Errorf("parse tips payload: %w", err)
	}
	return &tips, nil
}

// GenerateTips performs one request bounded only by ctx.
func (g *GeminiClient) GenerateTips(ctx context.Context, req TipsRequest) (*Tips, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.Model, genai.Text(tipsPrompt(req)), tipsConfig())
	if err != nil {
		return nil, externalError(err, "gemini request failed")
	}
	tips, err := parseTips(resp.Text())
	if err != nil {
		return nil, externalError(err, "gemini response invalid")
	}
	return tips, nil
}
