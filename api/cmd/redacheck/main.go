package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"redacheck/api/internal/checker"
	"redacheck/api/internal/config"
	"redacheck/api/internal/enrich/gemini"
	"redacheck/api/internal/handle"
	"redacheck/api/internal/health"
	"redacheck/api/internal/httpserver"
	"redacheck/api/internal/languagetool"
	"redacheck/api/internal/logging"
	"redacheck/api/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log)

	lt := languagetool.New(cfg.LanguageTool.URL, cfg.LanguageTool.Timeout)
	defer lt.Close()

	// Startup connectivity probe. The service still starts when the
	// grammar engine is down; requests answer 503 until it returns.
	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := lt.Languages(probeCtx); err != nil {
		log.Warn("languagetool unreachable at startup", "url", lt.BaseURL(), "err", err)
	} else {
		log.Info("languagetool connected", "url", lt.BaseURL())
	}
	cancel()

	apiKey := ""
	if cfg.LLM.Active() {
		apiKey = cfg.LLM.APIKey
	}
	enr, err := gemini.New(context.Background(), apiKey, cfg.LLM.Model, log)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}
	defer enr.Close()

	switch {
	case enr.Enabled():
		log.Info("ai enrichment enabled", "model", cfg.LLM.Model)
	case cfg.LLM.Enabled:
		log.Warn("ai enrichment disabled", "reason", "GEMINI_API_KEY not set")
	default:
		log.Info("ai enrichment disabled", "reason", "ENABLE_LLM=false")
	}

	svc := checker.New(lt, enr, log)
	h := handle.New(svc, health.New(lt, enr), lt.BaseURL())

	handler := middleware.Chain(httpserver.NewMux(h), cfg.CORS.Origins(), cfg.HTTP.MaxBodyBytes)
	return httpserver.Run(cfg.HTTP, handler, log)
}
