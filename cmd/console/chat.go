package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fscarponi/characterai/internal/app"
	"github.com/fscarponi/characterai/internal/bot"
	"github.com/fscarponi/characterai/internal/config"
	"github.com/fscarponi/characterai/internal/session"
)

// conversationID is the fixed conversation of the terminal front end.
const conversationID = "console"

const consoleChannel = "console"

type configLoader func() (*config.Config, error)

// dispatcher runs one event and waits for its replies.
type dispatcher interface {
	Do(ctx context.Context, ev bot.Event) ([]string, error)
}

var (
	promptColor = color.New(color.FgGreen, color.Bold)
	replyColor  = color.New(color.FgCyan)
	errorColor  = color.New(color.FgRed)
	infoColor   = color.New(color.FgYellow)
)

// bareWords maps the console vocabulary onto bot commands outside the creation flow.
var bareWords = map[string]string{
	"help":   "/" + bot.CmdHelp,
	"status": "/" + bot.CmdStatus,
	"clear":  "/" + bot.CmdClear,
}

func newChatCmd(load configLoader, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation in the terminal.

Type /start to pick a language, /select to choose a character and then chat freely.
The words help, status and clear work without the slash; exit ends the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			// The console shares the server's store but keeps its own log files quiet.
			cfg.ConversationLog.Enabled = false

			svc, err := app.New(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := svc.Close(closeCtx); err != nil {
					logger.Warn("Failed to close service", "error", err)
				}
			}()

			inFlow := func() bool {
				return svc.Sessions.CreationState(conversationID) != session.StateNone
			}
			return runREPL(cmd.Context(), svc.Dispatcher, inFlow, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runREPL reads lines from in until EOF, "exit" or ctx cancellation and prints the replies.
// While inFlow reports an active creation flow, bare words are passed through as answers.
func runREPL(ctx context.Context, d dispatcher, inFlow func() bool, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	_, _ = infoColor.Fprintln(out, "Character AI console. Type /start to begin or exit to quit.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		_, _ = promptColor.Fprint(out, "you> ")
		var line string
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				_, _ = fmt.Fprintln(out)
				return nil
			}
			line = l
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "exit") {
			_, _ = infoColor.Fprintln(out, "Goodbye!")
			return nil
		}
		if cmd, ok := bareWords[strings.ToLower(text)]; ok && (inFlow == nil || !inFlow()) {
			text = cmd
		}

		replies, err := d.Do(ctx, bot.Event{ConversationID: conversationID, Channel: consoleChannel, Text: text})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			_, _ = errorColor.Fprintln(out, bot.RejectionReply(err))
			continue
		}
		for _, reply := range replies {
			_, _ = replyColor.Fprintln(out, reply)
		}
	}
}
