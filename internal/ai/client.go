// Package ai suggests descriptive labels for bookmarks via the
// Anthropic API.
package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nikbrunner/tagsense/internal/model"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	betaHeader = "structured-outputs-2025-11-13"
	haikuModel = "claude-haiku-4-5-20251001"
)

var (
	ErrNoAPIKey        = errors.New("ANTHROPIC_API_KEY environment variable not set")
	ErrAPIRequest      = errors.New("API request failed")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Client handles communication with the Anthropic API.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new AI client.
// Returns an error if ANTHROPIC_API_KEY is not set.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SuggestLabels calls the AI to suggest categorized labels for a
// bookmark. Callers treat any error as "zero suggestions".
func (c *Client) SuggestLabels(input Input) (*Response, error) {
	prompt := buildPrompt(input)

	reqBody := apiRequest{
		Model:     haikuModel,
		MaxTokens: 512,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
		OutputFormat: &outputFormat{
			Type: "json_schema",
			Schema: jsonSchema{
				Type: "object",
				Properties: map[string]schemaProp{
					"labels": {
						Type: "array",
						Items: &schemaProp{
							Type: "object",
							Properties: map[string]schemaProp{
								"label": {Type: "string"},
								"category": {
									Type: "string",
									Enum: []string{
										string(model.CategoryTopic),
										string(model.CategoryType),
										string(model.CategoryPriority),
									},
								},
								"confidence": {Type: "number"},
								"reasoning":  {Type: "string"},
							},
							Required: []string{"label", "category", "confidence"},
						},
					},
					"suggestedDescription": {Type: "string"},
					"language":             {Type: "string"},
				},
				Required:             []string{"labels"},
				AdditionalProperties: false,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("anthropic-beta", betaHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Content) == 0 || apiResp.Content[0].Type != "text" {
		return nil, ErrInvalidResponse
	}

	var result Response
	if err := json.Unmarshal([]byte(apiResp.Content[0].Text), &result); err != nil {
		return nil, fmt.Errorf("unmarshal AI response: %w", err)
	}

	return &result, nil
}

func buildPrompt(input Input) string {
	existingStr := ""
	if len(input.ExistingLabels) > 0 {
		existingStr = fmt.Sprintf("\nExisting labels in the collection: %s", strings.Join(input.ExistingLabels, ", "))
	}

	contentStr := ""
	if input.Content != "" {
		contentStr = fmt.Sprintf("\n\nPage content preview:\n%s", input.Content)
	}

	return fmt.Sprintf(`Analyze this bookmark and suggest descriptive labels.

URL: %s
Title: %s%s%s

Instructions:
- Suggest up to 5 labels, each with a category: "topic" (subject matter), "type" (kind of resource), or "priority" (urgency of reading)
- Give each label a confidence between 0 and 1 reflecting how well it fits
- Prefer existing labels when they fit, keep new ones lowercase and concise
- Include a one-sentence reasoning per label
- Optionally suggest a short description and the page language`,
		input.URL, input.Title, existingStr, contentStr)
}
