// Package site parses content site flags and launches the site server.
package site

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	entrypoint "github.com/louisbranch/pageloader/internal/platform/cmd"
	"github.com/louisbranch/pageloader/internal/platform/logging"
	sitesvc "github.com/louisbranch/pageloader/internal/site"
	"github.com/louisbranch/pageloader/internal/site/seed"
	"github.com/louisbranch/pageloader/internal/site/storage/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// Config holds site command configuration.
type Config struct {
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath      string   `env:"DB_PATH" envDefault:"data/site.db"`
	SeedPath    string   `env:"SEED_PATH"`
	ErrorHandle string   `env:"ERROR_HANDLE" envDefault:"_error"`
	Languages   []string `env:"LANGUAGES" envSeparator:"," envDefault:"en"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	LogConsole  bool     `env:"LOG_CONSOLE"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	languages := strings.Join(cfg.Languages, ",")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite content database path")
	fs.StringVar(&cfg.SeedPath, "seed-path", cfg.SeedPath, "YAML content file applied at startup")
	fs.StringVar(&cfg.ErrorHandle, "error-handle", cfg.ErrorHandle, "Handle reported for unknown pages")
	fs.StringVar(&languages, "languages", languages, "Comma-separated supported languages, default first")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	fs.BoolVar(&cfg.LogConsole, "log-console", cfg.LogConsole, "Human-readable log output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Languages = splitList(languages)
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) (zerolog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	if cfg.LogConsole {
		return logging.NewConsole(os.Stderr, entrypoint.ServiceSite, level), nil
	}
	return logging.New(os.Stderr, entrypoint.ServiceSite, level), nil
}

// Run opens the content store, applies the seed file and serves the site.
func Run(ctx context.Context, cfg Config, logger zerolog.Logger) error {
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceSite, entrypoint.RunOptions{Logger: &logger}, func(ctx context.Context) error {
		store, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open content store: %w", err)
		}
		defer store.Close()

		if path := strings.TrimSpace(cfg.SeedPath); path != "" {
			doc, err := seed.LoadFile(path)
			if err != nil {
				return fmt.Errorf("load seed: %w", err)
			}
			if err := seed.Apply(ctx, store, doc); err != nil {
				return fmt.Errorf("apply seed: %w", err)
			}
			logger.Info().Str("path", path).Int("pages", len(doc.Pages)).Msg("seed applied")
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		server, err := sitesvc.NewServer(sitesvc.Config{
			HTTPAddr:    cfg.HTTPAddr,
			ErrorHandle: cfg.ErrorHandle,
			Languages:   cfg.Languages,
		}, sitesvc.Dependencies{
			Store:    store,
			Logger:   logger,
			Registry: registry,
		})
		if err != nil {
			return fmt.Errorf("init site server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve site: %w", err)
		}
		return nil
	})
}
