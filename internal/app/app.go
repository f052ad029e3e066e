// Package app assembles the conversation pipeline shared by the server and console binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fscarponi/characterai/internal/ai"
	"github.com/fscarponi/characterai/internal/bot"
	"github.com/fscarponi/characterai/internal/chat"
	"github.com/fscarponi/characterai/internal/config"
	"github.com/fscarponi/characterai/internal/convlog"
	"github.com/fscarponi/characterai/internal/metrics"
	"github.com/fscarponi/characterai/internal/session"
	"github.com/fscarponi/characterai/internal/store"
)

// App holds the wired components of a running service.
type App struct {
	Repo         *store.SQLiteStore
	Sessions     *session.Store
	Orchestrator *bot.Orchestrator
	Dispatcher   *bot.Dispatcher
	ConvLog      *convlog.Logger
}

// New opens the character store, seeds it when empty and wires the orchestrator
// and dispatcher. A nil recorder disables metrics.
func New(ctx context.Context, cfg *config.Config, recorder metrics.Recorder, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open character store: %w", err)
	}
	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("character store health check: %w", err)
	}
	if _, err := store.SeedFromCatalogue(ctx, repo, cfg.SeedFile); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("seed character store: %w", err)
	}

	boundary, err := ai.New(cfg.AIProvider(), recorder, logger)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	prompts := chat.NewPromptBuilder(boundary.Translator, cfg.DefaultLanguage, logger)
	window := &chat.Window{
		MaxTurns:    cfg.History.MaxTurns,
		TokenBudget: cfg.History.TokenBudget,
		Counter:     chat.NewTokenCounter(),
	}
	sessions := session.NewStore(
		session.WithDefaultLanguage(cfg.DefaultLanguage),
		session.WithContextFactory(func() *chat.Context {
			return chat.NewContext(prompts, window)
		}),
	)

	clog, err := convlog.New(cfg.ConvLog(), logger)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("conversation log: %w", err)
	}

	orch := bot.NewOrchestrator(sessions, repo, boundary.Completer,
		bot.WithRecorder(recorder),
		bot.WithConversationLog(clog),
		bot.WithLogger(logger),
	)
	disp := bot.NewDispatcher(orch,
		bot.WithBacklog(cfg.DispatchBacklog),
		bot.WithDispatchRecorder(recorder),
		bot.WithDispatchLogger(logger),
	)

	logger.Info("Conversation pipeline ready",
		"ai_provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"history_max_turns", cfg.History.MaxTurns,
		"history_token_budget", cfg.History.TokenBudget)

	return &App{
		Repo:         repo,
		Sessions:     sessions,
		Orchestrator: orch,
		Dispatcher:   disp,
		ConvLog:      clog,
	}, nil
}

// Close drains the dispatcher, flushes the conversation log and closes the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Dispatcher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
	}
	if err := a.ConvLog.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close conversation log: %w", err))
	}
	if err := a.Repo.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close character store: %w", err))
	}
	return errors.Join(errs...)
}
