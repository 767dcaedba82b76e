package ai

import "github.com/nikbrunner/tagsense/internal/model"

// Input is the analysis triple handed to the provider, plus the
// bookmark's existing label vocabulary.
type Input struct {
	URL            string
	Title          string
	Content        string
	ExistingLabels []string
}

// Response represents the AI-suggested labels for a bookmark.
type Response struct {
	Labels               []model.LabelSuggestion `json:"labels"`
	SuggestedDescription string                  `json:"suggestedDescription,omitempty"`
	Language             string                  `json:"language,omitempty"`
}

// apiRequest represents the Anthropic API request body.
type apiRequest struct {
	Model        string        `json:"model"`
	MaxTokens    int           `json:"max_tokens"`
	Messages     []apiMessage  `json:"messages"`
	OutputFormat *outputFormat `json:"output_format,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type outputFormat struct {
	Type   string     `json:"type"`
	Schema jsonSchema `json:"schema"`
}

type jsonSchema struct {
	Type                 string                `json:"type"`
	Properties           map[string]schemaProp `json:"properties"`
	Required             []string              `json:"required"`
	AdditionalProperties bool                  `json:"additionalProperties"`
}

type schemaProp struct {
	Type       string                `json:"type"`
	Enum       []string              `json:"enum,omitempty"`
	Items      *schemaProp           `json:"items,omitempty"`
	Properties map[string]schemaProp `json:"properties,omitempty"`
	Required   []string              `json:"required,omitempty"`
}

// apiResponse represents the Anthropic API response body.
type apiResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
