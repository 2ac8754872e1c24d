package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/keshon/datastore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keshon/chatter/internal/ai"
	"github.com/keshon/chatter/internal/config"
	"github.com/keshon/chatter/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "chatter",
	Short:         "chatter: a Discord participant that decides on its own when to speak",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(runCmd(), chatCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app is what both commands need: settings, logger, persona and generator.
type app struct {
	cfg     *config.Config
	persona *config.Persona
	log     zerolog.Logger
	store   *datastore.DataStore
	memory  *ai.Memory
	gen     ai.Generator
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	persona, err := config.LoadPersona(cfg.PersonaPath)
	if err != nil {
		return nil, fmt.Errorf("load persona: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.MemoryPath), 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}
	store, err := datastore.New(cfg.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	memory := ai.NewMemory(persona.InitialContext, persona.MaxContextLength, store)
	gen, err := ai.New(ai.Options{
		UseLLM: persona.UseLLM,
		OpenAI: ai.OpenAIConfig{
			APIKey:    cfg.OpenAIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.OpenAIModel,
			MaxTokens: persona.MaxTokensResponse,
		},
		Memory: memory,
		RPS:    cfg.LLMRPS,
	}, logging.Component(log, "ai"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		persona: persona,
		log:     log,
		store:   store,
		memory:  memory,
		gen:     gen,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Str("action", "store_close").Err(err).Send()
	}
}
