/*
Package ai summarises disclosure documents with the Gemini API.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"
	// Disclosures rarely need more than the first few pages to summarise.
	maxDocumentRunes = 20000
)

type Analysis struct {
	Summary []string `json:"summary"`
}

type Summarizer struct {
	client    *genai.Client
	modelName string
}

func NewSummarizer(ctx context.Context, apiKey, modelName string) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Summarizer{client: client, modelName: modelName}, nil
}

// Summarize returns a few short bullet points describing the document.
func (s *Summarizer) Summarize(ctx context.Context, entry types.Entry, text string) ([]string, error) {
	userContent := &genai.Content{
		Parts: []*genai.Part{
			{Text: buildPrompt(entry, text)},
		},
		Role: "user",
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.modelName, []*genai.Content{userContent}, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   getResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	analysis, err := parseAnalysis(resp.Text())
	if err != nil {
		return nil, err
	}
	return analysis.Summary, nil
}

func parseAnalysis(respText string) (*Analysis, error) {
	var analysis Analysis
	if err := json.Unmarshal([]byte(respText), &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini JSON response: %w. Raw text: %s", err, respText)
	}

	kept := analysis.Summary[:0]
	for _, s := range analysis.Summary {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	analysis.Summary = kept
	return &analysis, nil
}

func getResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "1-3 concise bullet points in Japanese summarising the disclosure.",
			},
		},
		Required: []string{"summary"},
	}
}
