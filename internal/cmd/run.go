package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spewlabs/explainer/internal/config"
	"github.com/spewlabs/explainer/internal/logger"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <query>...",
		Short: "Generate one explainer video",
		Long: `Generate a single explainer video synchronously and print the path of
the final composite.

The query is everything after the flags; multiple arguments are joined
with spaces. The persona is matched case-insensitively against the
catalog names.

Configuration is loaded from .explainer/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  explainer run --persona "Ada Lovelace" how do neural networks learn
  explainer run --persona einstein --config custom.yaml "what is entropy"
  explainer run --persona einstein --log-dir ./logs quantum tunneling`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommand,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: .explainer/config.yaml)")
	cmd.Flags().StringP("persona", "p", "", "Persona name from the catalog (required)")
	cmd.Flags().String("log-dir", "", "Directory for log files")

	cmd.MarkFlagRequired("persona")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	personaName, _ := cmd.Flags().GetString("persona")
	logDirFlag, _ := cmd.Flags().GetString("log-dir")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if logDirFlag != "" {
		cfg.LogDir = logDirFlag
	}

	catalog, err := config.LoadCatalog(cfg.PersonasPath)
	if err != nil {
		return fmt.Errorf("failed to load persona catalog: %w", err)
	}

	personaID, ok := catalog.FindByName(personaName)
	if !ok {
		return fmt.Errorf("unknown persona %q; available: %s", personaName, strings.Join(catalog.Names(), ", "))
	}
	persona, _ := catalog.ByID(personaID)

	log, closeLog, err := newRunLogger(cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	orchestrator, err := buildOrchestrator(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	query := strings.Join(args, " ")
	video, err := orchestrator.GenerateVideo(ctx, persona, query)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Video written to %s\n", video.Path())
	return nil
}

// teeLogger fans log lines out to the console and the run log file.
type teeLogger struct {
	console logger.Logger
	file    logger.Logger
}

func (t *teeLogger) LogDebug(message string) { t.console.LogDebug(message); t.file.LogDebug(message) }
func (t *teeLogger) LogInfo(message string)  { t.console.LogInfo(message); t.file.LogInfo(message) }
func (t *teeLogger) LogWarn(message string)  { t.console.LogWarn(message); t.file.LogWarn(message) }
func (t *teeLogger) LogError(message string) { t.console.LogError(message); t.file.LogError(message) }

// newRunLogger builds the console+file logger pair for a command
// invocation. The returned closer flushes the file log.
func newRunLogger(out io.Writer, cfg *config.Config) (logger.Logger, func(), error) {
	console := logger.NewConsoleLogger(out, cfg.LogLevel)

	fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &teeLogger{console: console, file: fileLog}, func() { fileLog.Close() }, nil
}
