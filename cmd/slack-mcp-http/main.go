// Command slack-mcp-http starts the Slack MCP HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"slack-mcp/internal/config"
	"slack-mcp/internal/logging"
	"slack-mcp/internal/metrics"
	"slack-mcp/internal/server"
	"slack-mcp/internal/session"
	"slack-mcp/internal/slack"
	"slack-mcp/internal/tools"
)

func main() {
	cfg, err := config.FromEnv()
	if err == nil {
		err = cfg.Validate()
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Error("config.invalid", slog.String("err", err.Error()))
		os.Exit(1)
	}

	creds := config.LoadCredentials()
	if !creds.HasBotToken() || !creds.HasTeamID() {
		log.Warn("credentials.missing",
			slog.Bool("hasSlackBotToken", creds.HasBotToken()),
			slog.Bool("hasSlackTeamId", creds.HasTeamID()),
			slog.String("hint", "tool calls fail until SLACK_BOT_TOKEN and SLACK_TEAM_ID are set"))
	}

	m := metrics.New()
	httpClient := &http.Client{Timeout: cfg.SlackTimeout}
	dispatcher := tools.NewDispatcher(tools.DefaultCatalog(), config.LoadCredentials, func(token string) slack.API {
		return slack.New(cfg.SlackAPIURL, token, httpClient)
	}, tools.WithMetrics(m), tools.WithLogger(log))

	registry := session.NewRegistry(
		session.WithQueueSize(cfg.QueueSize),
		session.WithMetrics(m),
		session.WithLogger(log),
	)
	srv := server.New(server.Options{
		Dispatcher:     dispatcher,
		Registry:       registry,
		Credentials:    config.LoadCredentials,
		Metrics:        m,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		IdleTimeout:       cfg.KeepAlive,
		ReadHeaderTimeout: cfg.HeaderTimeout,
	}
	// Streams only return once their session ends.
	httpSrv.RegisterOnShutdown(registry.Close)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("server.start", slog.String("addr", cfg.Addr()), slog.Bool("tls", cfg.TLSEnabled()))
		if cfg.TLSEnabled() {
			errc <- httpSrv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server.fail", slog.String("err", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("server.shutdown", slog.Int("sessions", registry.Len()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownAfter)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("server.shutdown.fail", slog.String("err", err.Error()))
		}
		registry.Close()
	}
}
