package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshon/chatter/internal/ai"
)

const consoleAuthor = "console"

func chatCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the generator from the terminal",
		Long: `Talk to the generator from the terminal. Every line is sent with the
"command" trigger, so the participant always answers. Type exit or quit to leave.

Examples:
  chatter chat                 # interactive
  chatter chat -m "hola"       # one-shot message`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			if message != "" {
				return ask(cmd.Context(), a.gen, message, cmd.OutOrStdout())
			}
			return chatLoop(cmd.Context(), a.gen, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "one-shot message (omit for interactive mode)")
	return cmd
}

func chatLoop(ctx context.Context, gen ai.Generator, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Type 'exit' to leave.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}
		if err := ask(ctx, gen, line, out); err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}

func ask(ctx context.Context, gen ai.Generator, line string, out io.Writer) error {
	resp, err := gen.Generate(ctx, ai.Request{
		Trigger: "command",
		Author:  consoleAuthor,
		Message: line,
	})
	if err != nil {
		return err
	}
	if resp.Note != nil {
		fmt.Fprintf(out, "[note] %s\n", *resp.Note)
	}
	if resp.Reply == nil {
		fmt.Fprintln(out, "(no reply)")
		return nil
	}
	fmt.Fprintln(out, *resp.Reply)
	return nil
}
