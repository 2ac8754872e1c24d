package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keshon/chatter/internal/discord"
	"github.com/keshon/chatter/internal/logging"
	"github.com/keshon/chatter/internal/mind"
	"github.com/keshon/chatter/pkg/jobmgr"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and take part in conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx)
		},
	}
}

func runBot(ctx context.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cfg.RequireDiscord(); err != nil {
		return err
	}

	bot, err := discord.New(a.cfg.DiscordToken, logging.Component(a.log, "discord"))
	if err != nil {
		return err
	}
	selfID, err := bot.Open()
	if err != nil {
		return err
	}
	defer func() {
		if err := bot.Close(); err != nil {
			a.log.Error().Str("action", "session_close").Err(err).Send()
		}
	}()

	jobs := jobmgr.NewManager(logging.JobReporter(logging.Component(a.log, "jobmgr")))
	engine := mind.NewEngine(mind.Config{
		SelfID:            selfID,
		HistorySize:       a.cfg.HistorySize,
		JoinThreshold:     a.cfg.JoinThreshold,
		InactivityTimeout: a.cfg.InactivityTimeout,
		WatchPeriod:       a.cfg.WatchPeriod,
		InactiveChannel:   a.cfg.InactiveChannelName,
		Keywords:          a.cfg.Keywords,
		ActivityWorkers:   a.cfg.ActivityWorkers,
		Allowed:           a.persona.Channels(),
	}, bot, a.gen, bot, logging.Component(a.log, "mind"), mind.WithJobManager(jobs))
	bot.Attach(engine)

	err = engine.Run(ctx)
	a.log.Info().Str("action", "shutdown").Msg("Discord bot exited cleanly")
	return err
}
