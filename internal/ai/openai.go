package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/keshon/chatter/pkg/retrylimit"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 500
	defaultTemperature = 0.9
)

// OpenAIConfig configures the OpenAI-compatible generator.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// OpenAIGenerator asks a chat-completions model for a JSON answer and keeps
// the notes it proposes in Memory.
type OpenAIGenerator struct {
	client    openai.Client
	model     string
	maxTokens int
	memory    *Memory
	log       zerolog.Logger
}

// NewOpenAIGenerator creates a generator. memory must not be nil.
func NewOpenAIGenerator(cfg OpenAIConfig, memory *Memory, log zerolog.Logger) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if memory == nil {
		return nil, fmt.Errorf("memory is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &OpenAIGenerator{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		memory:    memory,
		log:       log,
	}, nil
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	prompt, err := req.Prompt()
	if err != nil {
		return Response{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(g.memory.Context())),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(g.maxTokens)),
		Temperature: openai.Float(defaultTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	start := time.Now()
	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("openai chat: %w", err)
	}

	g.log.Debug().
		Str("action", "llm_call").
		Str("trigger", req.Trigger).
		Str("model", g.model).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Int64("prompt_tokens", completion.Usage.PromptTokens).
		Int64("completion_tokens", completion.Usage.CompletionTokens).
		Msg("llm chat completed")

	if len(completion.Choices) == 0 {
		g.memory.Store(nil)
		return Response{}, fmt.Errorf("%w: no choices in response", ErrMalformed)
	}

	resp, err := ParseResponse(completion.Choices[0].Message.Content)
	g.memory.Store(resp.Note)
	if err != nil {
		return Response{}, err
	}
	return resp, nil
}

// IsOverloaded classifies OpenAI API errors for the adaptive limiter.
func IsOverloaded(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return retrylimit.IsOverloadStatus(apiErr.StatusCode)
	}
	return retrylimit.DefaultClassifier(err)
}
