package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	// ErrMalformed is returned when the model answer cannot be decoded.
	ErrMalformed = errors.New("malformed generator result")
	// ErrRateLimited is returned when waiting for the rate limiter was aborted.
	ErrRateLimited = errors.New("generator rate limited")
)

// Request is the structured prompt sent to the generator.
type Request struct {
	Trigger     string `json:"trigger"`
	ChannelName string `json:"channel_name"`
	Author      string `json:"author"`
	Message     string `json:"message"`
	History     string `json:"history"`
}

// Prompt renders the request as indented JSON without HTML escaping.
func (r Request) Prompt() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Response is what the generator decided. A nil Reply means stay silent;
// a nil Note means nothing worth remembering.
type Response struct {
	Reply *string
	Note  *string
}

// Generator produces a reply for a request. Implementations may fail with transient errors.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// answer is the JSON shape the model is told to produce.
type answer struct {
	Response *string `json:"response"`
	Context  *string `json:"context"`
}

// ParseResponse decodes a raw model answer. Think blocks and code fences are
// stripped first. Anything undecodable yields an empty Response and ErrMalformed.
func ParseResponse(raw string) (Response, error) {
	cleaned := cleanReply(raw)
	var a answer
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return Response{}, fmt.Errorf("%w: %v (raw=%s)", ErrMalformed, err, truncate([]byte(raw)))
	}
	return Response{Reply: a.Response, Note: a.Context}, nil
}

// Options selects and configures the generator used by the bot.
type Options struct {
	UseLLM bool
	OpenAI OpenAIConfig
	Memory *Memory
	RPS    float64
}

// New builds the configured generator. Without UseLLM the echo generator is
// returned; otherwise an OpenAI generator paced by an adaptive rate limit.
func New(opts Options, log zerolog.Logger) (Generator, error) {
	if !opts.UseLLM {
		log.Info().Str("action", "generator_select").Str("generator", "echo").Send()
		return EchoGenerator{}, nil
	}
	gen, err := NewOpenAIGenerator(opts.OpenAI, opts.Memory, log)
	if err != nil {
		return nil, fmt.Errorf("openai generator: %w", err)
	}
	log.Info().Str("action", "generator_select").Str("generator", "openai").Str("model", gen.model).Send()
	return NewLimited(gen, opts.RPS, IsOverloaded), nil
}
