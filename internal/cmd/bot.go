package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spewlabs/explainer/internal/bot"
	"github.com/spewlabs/explainer/internal/config"
	"github.com/spewlabs/explainer/internal/jobs"
)

// NewBotCommand creates the bot command
func NewBotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the mention-driven bot loop",
		Long: `Poll the platform gateway for new mentions and answer each valid
request with a generated explainer video.

Each cycle fetches mentions newer than the last one seen, parses them
into a topic and persona, acknowledges valid requests, and submits the
generation pipeline as a tracked background job. The same cycle resolves
finished jobs: completions get a video reply, failures an apology, and
jobs past the time budget are dropped silently.

A file lock in the work directory prevents two bot instances from
polling the same gateway. Stop with Ctrl-C; in-flight jobs are canceled.`,
		Args: cobra.NoArgs,
		RunE: botCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .explainer/config.yaml)")

	return cmd
}

// botCommand implements the bot command logic
func botCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Gateway.URL == "" {
		return fmt.Errorf("gateway.url is required for the bot")
	}
	gatewayToken := os.Getenv(cfg.Gateway.TokenEnv)
	if gatewayToken == "" {
		return fmt.Errorf("%s environment variable not set", cfg.Gateway.TokenEnv)
	}

	catalog, err := config.LoadCatalog(cfg.PersonasPath)
	if err != nil {
		return fmt.Errorf("failed to load persona catalog: %w", err)
	}

	log, closeLog, err := newRunLogger(cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	orchestrator, err := buildOrchestrator(cfg, log)
	if err != nil {
		return err
	}

	// One poller per work directory.
	lock, err := bot.AcquireInstanceLock(cfg.WorkDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	store, closeStore, err := newJobStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	apiKey, err := cfg.Model.APIKey()
	if err != nil {
		return err
	}
	llmClient := newLLMClient(apiKey, cfg)

	tracker := jobs.NewTracker(store, bot.NewJobRunner(catalog, orchestrator), nil, cfg.MaxJobTime, log)
	gateway := bot.NewGatewayClient(cfg.Gateway.URL, gatewayToken)
	parser := bot.NewRequestParser(llmClient, cfg.Model.ParseModel, catalog, log)
	handler := bot.NewActionHandler(parser, catalog, tracker, gateway, log)
	tracker.SetHandler(handler)

	listener := bot.NewListener(gateway, handler, tracker, cfg.PollInterval, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newJobStore opens the configured job store: SQLite when a path is set,
// in-memory otherwise.
func newJobStore(cfg *config.Config) (jobs.Store, func(), error) {
	if cfg.JobDBPath == "" {
		return jobs.NewMemoryStore(), func() {}, nil
	}
	store, err := jobs.NewSQLiteStore(cfg.JobDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open job store: %w", err)
	}
	return store, func() { store.Close() }, nil
}
