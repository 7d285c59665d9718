package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"github.com/xeipuuv/gojsonschema"
)

const (
	// BaseURL is the Groq OpenAI-compatible API base URL.
	BaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the fastest hosted model suitable for query rewriting.
	DefaultModel = "llama-3.1-8b-instant"
)

// ErrMalformedResponse is returned when the model output is not valid JSON
// or does not match the expected shape.
var ErrMalformedResponse = errors.New("groq: malformed enhancement response")

// ErrEmptyResponse is returned when the model produced no choices.
var ErrEmptyResponse = errors.New("groq: empty response")

// Client asks a chat model to correct a search query and extract intent.
type Client struct {
	model  llms.Model
	schema *gojsonschema.Schema
}

// NewClient constructs a Groq client. timeout bounds each HTTP request.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("groq: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = BaseURL
	}

	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("groq: create client: %w", err)
	}
	return NewClientWithModel(llm)
}

// NewClientWithModel wraps an existing llms.Model.
func NewClientWithModel(model llms.Model) (*Client, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("groq: compile response schema: %w", err)
	}
	return &Client{model: model, schema: schema}, nil
}

// Enhance performs a single completion for query. It does not retry.
func (c *Client) Enhance(ctx context.Context, query string) (*EnhanceResult, error) {
	content := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(fmt.Sprintf("Query: %q", query))},
		},
	}

	resp, err := c.model.GenerateContent(ctx, content,
		llms.WithTemperature(0.3),
		llms.WithMaxTokens(150),
		llms.WithTopP(0.9),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("groq: generate: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return c.parse(resp.Choices[0].Content, query)
}

func (c *Client) parse(raw, query string) (*EnhanceResult, error) {
	text := stripFences(raw)

	result, err := c.schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		log.Debug().Str("content", text).Msg("Groq response is not JSON")
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(errs, "; "))
	}

	var out EnhanceResult
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out.normalize(query)
	if err := out.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
