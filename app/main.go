package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ReadinessBot/internal/api"
	"ReadinessBot/internal/config"
	"ReadinessBot/internal/definition"
	"ReadinessBot/internal/graceful"
	"ReadinessBot/internal/narrative"
	"ReadinessBot/internal/qualifying"
	"ReadinessBot/internal/repositories"
	"ReadinessBot/internal/sessionstore"
	"ReadinessBot/internal/telegram"
	"ReadinessBot/internal/utils/logger/handlers/slogpretty"
	"ReadinessBot/internal/utils/logger/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var Version = "0.1"

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info(
		"starting readiness bot",
		slog.String("env", cfg.Env),
		slog.String("version", Version),
	)

	ctx, stop := graceful.SignalContext(context.Background())
	defer stop()

	repositoryService := repositories.New(log, cfg)

	catalog := definition.NewCatalog(log, definitionSource(log, cfg, repositoryService), cfg.DefinitionConfig.StrictWeights)
	go func() {
		// Failures are kept in the catalog status; /reload retries.
		_ = catalog.Reload(ctx)
	}()

	sessions, closeSessions := setupSessions(ctx, log, cfg)
	narrator := setupNarrator(log, cfg)

	apiServer := api.NewServer(log, cfg.HttpServer, catalog, qualifying.Questions)
	go func() {
		if err := apiServer.Start(); err != nil {
			stop()
		}
	}()

	steps := []graceful.Step{}

	if cfg.BotConfig.Enabled {
		tgBot, err := telegram.New(log, cfg, repositoryService, catalog, sessions, narrator)
		if err != nil {
			log.Error("telegram bot disabled", sl.Err(err))
		} else {
			go tgBot.Start()
			steps = append(steps, graceful.Step{Name: "Telegram bot", Op: tgBot.Shutdown})
		}
	}

	steps = append(steps,
		graceful.Step{Name: "HTTP API", Op: apiServer.Shutdown},
		graceful.Step{Name: "Session store", Op: closeSessions},
		graceful.Step{Name: "Repository service", Op: repositoryService.Shutdown},
	)

	maxSecond := 15 * time.Second
	<-graceful.GracefulShutdown(ctx, maxSecond, steps, log)
}

func definitionSource(log *slog.Logger, cfg *config.Config, repo *repositories.Repository) definition.Source {
	if cfg.DefinitionConfig.File == "" {
		return repo
	}
	if _, err := definition.LoadFile(cfg.DefinitionConfig.File); err != nil {
		log.Error("cannot read definition file", slog.String("file", cfg.DefinitionConfig.File), sl.Err(err))
		os.Exit(1)
	}
	log.Info("evaluation definition served from file", slog.String("file", cfg.DefinitionConfig.File))
	return definition.NewFileSource(cfg.DefinitionConfig.File)
}

func setupSessions(ctx context.Context, log *slog.Logger, cfg *config.Config) (sessionstore.Store, graceful.Operation) {
	ttl := cfg.RedisConfig.SessionTTL
	if ttl <= 0 {
		ttl = sessionstore.DefaultTTL
	}

	if cfg.RedisConfig.Address != "" {
		store, err := sessionstore.NewRedisStore(ctx, cfg.RedisConfig.Address, cfg.RedisConfig.Password, cfg.RedisConfig.DB, ttl)
		if err == nil {
			log.Info("sessions stored in redis", slog.String("address", cfg.RedisConfig.Address))
			return store, func(context.Context) error { return store.Close() }
		}
		log.Error("redis unavailable, keeping sessions in memory", sl.Err(err))
	}

	store := sessionstore.NewMemoryStore(ttl)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					log.Debug("expired sessions removed", slog.Int("count", n))
				}
			}
		}
	}()
	return store, func(context.Context) error { return nil }
}

func setupNarrator(log *slog.Logger, cfg *config.Config) narrative.Generator {
	if cfg.LLMConfig.APIKey == "" {
		log.Info("narrative reports use built-in templates")
		return narrative.StubGenerator{}
	}
	return narrative.NewFallback(log,
		narrative.NewOpenRouterGenerator(log, cfg.LLMConfig.APIKey, cfg.LLMConfig.Model, cfg.LLMConfig.Timeout),
		narrative.StubGenerator{},
	)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog(slog.LevelDebug)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = setupPrettySlog(slog.LevelInfo)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog(level slog.Level) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}
	handler := opts.NewPrettyHandler(os.Stdout)
	return slog.New(handler)
}
