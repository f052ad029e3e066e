// Character AI - persona chat server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/fscarponi/characterai/internal/api"
	"github.com/fscarponi/characterai/internal/app"
	"github.com/fscarponi/characterai/internal/config"
	"github.com/fscarponi/characterai/internal/identity"
	"github.com/fscarponi/characterai/internal/metrics"
	"github.com/fscarponi/characterai/internal/middleware"
	"github.com/fscarponi/characterai/internal/telegram"
	"github.com/fscarponi/characterai/internal/webchat"
	"github.com/fscarponi/characterai/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "ai_provider", cfg.AI.Provider)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(ctx, cfg, recorder, logger)
	if err != nil {
		slog.Error("Failed to initialize service", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	// Initialize handlers.
	conns := webchat.NewConnManager()
	apiHandler := api.NewHandler(svc.Repo, svc.Dispatcher, cfg.AI.RequestTimeout*2)
	wsHandler := webchat.NewHandler(svc.Dispatcher, conns, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(middleware.AllowedOrigins(cfg.FrontendURL)))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	apiHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Serve embedded chat widget (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// WebSocket connections are long-lived, so no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.TelegramEnabled() {
		bot, err := telegram.Connect(cfg.Telegram.Token)
		if err != nil {
			slog.Error("Failed to connect Telegram bot", "error", err)
			os.Exit(1)
		}
		slog.Info("Telegram bot authorized", "username", bot.Self.UserName, "configured_username", cfg.Telegram.Username)
		adapter := telegram.New(bot, svc.Dispatcher, cfg.Telegram.PollTimeout, logger)
		g.Go(func() error {
			return adapter.Run(gctx)
		})
	} else {
		slog.Info("Telegram adapter disabled (TELEGRAM_BOT_TOKEN not set)")
	}

	// Shut the HTTP server down once a signal arrives or a component fails.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		conns.CloseAll("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		exitCode = 1
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.Close(closeCtx); err != nil {
		slog.Error("Failed to close service", "error", err)
		exitCode = 1
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	slog.Info("Server stopped successfully")
}
