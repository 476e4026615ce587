package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/croxxed/mangamux/internal/config"
	"github.com/croxxed/mangamux/internal/consensus"
	"github.com/croxxed/mangamux/internal/resolve"
	"github.com/croxxed/mangamux/internal/source"
	"github.com/croxxed/mangamux/internal/source/madara"
	"github.com/croxxed/mangamux/internal/source/mangadex"
	"github.com/croxxed/mangamux/internal/store"
	"github.com/croxxed/mangamux/internal/update"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mangamux",
	Short: "Cross-source manga aggregation and update tracking",
	Long: `mangamux finds the same manga across many scraping sources, reconciles
their conflicting chapter counts into one trustworthy number, and tells
you when something you follow has new chapters.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// app bundles everything the commands share.
type app struct {
	cfg          *config.Config
	store        *store.JSONStore
	registry     *source.Registry
	resolver     *resolve.Resolver
	engine       *consensus.Engine
	orchestrator *update.Orchestrator
	metrics      *source.Metrics
	log          *slog.Logger
}

func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	metrics := source.NewMetrics()
	call := source.CallConfig{
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		RetryBase: cfg.RetryBase,
	}

	providers := []source.Provider{mangadex.New()}
	for _, site := range madara.Fleet() {
		providers = append(providers, site)
	}

	registry := source.NewRegistry(call, metrics, log, providers...)
	resolver := resolve.New(registry, log)

	return &app{
		cfg:          cfg,
		store:        st,
		registry:     registry,
		resolver:     resolver,
		engine:       consensus.NewEngine(resolver, registry, log),
		orchestrator: update.New(resolver, registry, st, log),
		metrics:      metrics,
		log:          log,
	}, nil
}
