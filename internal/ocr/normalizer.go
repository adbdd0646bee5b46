package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/%s:generateContent?key=%s"

// Normalizer turns raw OCR text into a structured identity-document record
// via the Gemini generateContent REST API.
type Normalizer struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint, used by tests.
	BaseURL string
	client  *http.Client
	now     func() time.Time
}

func NewNormalizer(apiKey, model string) *Normalizer {
	return &Normalizer{
		APIKey: apiKey,
		Model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
		now:    time.Now,
	}
}

var (
	jsonFence = regexp.MustCompile("(?i)```json")
	fence     = regexp.MustCompile("```")
	jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON strips markdown fences and returns the first JSON object in a
// model response. LLMs wrap output in fences and prose despite instructions.
func ExtractJSON(text string) (string, error) {
	text = jsonFence.ReplaceAllString(text, "")
	text = fence.ReplaceAllString(text, "")

	match := jsonBlock.FindString(text)
	if match == "" {
		return "", fmt.Errorf("no JSON object in model response")
	}
	return strings.TrimSpace(match), nil
}

func (n *Normalizer) prompt(rawText string, confidence float64) string {
	return fmt.Sprintf(`Return ONLY valid JSON.
No markdown.
No explanations.

OCR TEXT:
%s

Schema:
{
  "document_type": "",
  "country": "",
  "document_number": "",
  "passport_number": "",
  "given_names": "",
  "surnames": "",
  "full_name": "",
  "nationality": "",
  "date_of_birth": "",
  "gender": "",
  "place_of_birth": "",
  "issue_date": "",
  "expiry_date": "",
  "mrz": "",
  "address": "",
  "warnings": [],
  "confidence": {
    "global": %g,
    "fields": {}
  },
  "meta": {
    "normalized_by": "gemini",
    "timestamp": "%s"
  }
}

Rules:
- country and nationality ISO-3
- dates YYYY-MM-DD
- gender only M, F, X
- detect DNI vs passport correctly
- separate document_number and passport_number
`, rawText, confidence, n.now().UTC().Format(time.RFC3339))
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (n *Normalizer) call(ctx context.Context, prompt string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	req.GenerationConfig.Temperature = 0
	req.GenerationConfig.MaxOutputTokens = 2048

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf(geminiEndpoint, n.Model, n.APIKey)
	if n.BaseURL != "" {
		url = fmt.Sprintf("%s/%s:generateContent?key=%s", n.BaseURL, n.Model, n.APIKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// Normalize sends the OCR text through the model and parses the structured
// result. One retry; after that the caller falls back to the raw payload.
func (n *Normalizer) Normalize(ctx context.Context, rawText string, confidence float64) (map[string]any, error) {
	if n.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	prompt := n.prompt(rawText, confidence)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		text, err := n.call(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		cleaned, err := ExtractJSON(text)
		if err != nil {
			lastErr = err
			continue
		}
		var result map[string]any
		if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
			lastErr = fmt.Errorf("gemini JSON invalid: %w", err)
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("gemini normalization failed after retry: %w", lastErr)
}
