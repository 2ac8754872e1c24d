package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultContextFile = "context.txt"
	defaultContextText = "Default initial context.\n"
)

// ChannelList accepts channel names or ids; ids may be written as JSON numbers.
type ChannelList []string

func (l *ChannelList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ChannelList, 0, len(raw))
	for _, r := range raw {
		dec := json.NewDecoder(bytes.NewReader(r))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case json.Number:
			out = append(out, x.String())
		default:
			return fmt.Errorf("channel must be a string or number, got %s", r)
		}
	}
	*l = out
	return nil
}

// Persona is the bot personality file. InitialContext is read from ContextFile,
// relative to the persona file's directory.
type Persona struct {
	UseLLM            bool        `json:"response_use_llm"`
	MaxContextLength  int         `json:"max_context_length"`
	MaxTokensResponse int         `json:"max_tokens_response"`
	AllowedChannels   ChannelList `json:"allowed_channels"`
	TestChannels      ChannelList `json:"test_channels"`
	ContextFile       string      `json:"context_file"`

	InitialContext string `json:"-"`
}

// DefaultPersona returns the settings written when no persona file exists.
func DefaultPersona() Persona {
	return Persona{
		UseLLM:            false,
		MaxContextLength:  12000,
		MaxTokensResponse: 500,
		AllowedChannels:   ChannelList{},
		TestChannels:      ChannelList{},
		ContextFile:       defaultContextFile,
	}
}

// LoadPersona reads the persona file at path. A missing file is created with
// defaults, together with a default context file next to it.
func LoadPersona(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return generateDefault(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read persona: %w", err)
	}

	p := DefaultPersona()
	p.ContextFile = ""
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse persona %s: %w", path, err)
	}

	if p.ContextFile != "" {
		ctxPath := filepath.Join(filepath.Dir(path), p.ContextFile)
		text, err := os.ReadFile(ctxPath)
		if err != nil {
			return nil, fmt.Errorf("context file %s: %w", ctxPath, err)
		}
		p.InitialContext = string(text)
	}
	return &p, nil
}

func generateDefault(path string) (*Persona, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create persona dir: %w", err)
	}

	p := DefaultPersona()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode persona: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write persona: %w", err)
	}

	ctxPath := filepath.Join(dir, p.ContextFile)
	if _, err := os.Stat(ctxPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(ctxPath, []byte(defaultContextText), 0o644); err != nil {
			return nil, fmt.Errorf("write context file: %w", err)
		}
	}
	text, err := os.ReadFile(ctxPath)
	if err != nil {
		return nil, fmt.Errorf("context file %s: %w", ctxPath, err)
	}
	p.InitialContext = string(text)
	return &p, nil
}

// Channels returns the allowed and test channels combined, without duplicates.
// Empty means every channel is allowed.
func (p *Persona) Channels() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range []ChannelList{p.AllowedChannels, p.TestChannels} {
		for _, c := range list {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
