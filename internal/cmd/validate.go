package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spewlabs/explainer/internal/config"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and persona catalog",
		Long: `Load and validate the configuration file and the persona catalog,
checking for:
  - Parseable YAML and sane values (timeouts, attempt counts)
  - A readable persona catalog
  - Persona validation (ids, names, voices, base videos)
  - Duplicate persona ids

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return validateSetup(configPath, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .explainer/config.yaml)")

	return cmd
}

// validateSetup checks the config and catalog and reports what it found.
func validateSetup(configPath string, output io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "Config OK (work dir %s, %d max attempts, %s job budget)\n",
		cfg.WorkDir, cfg.MaxAttempts, cfg.MaxJobTime)

	catalog, err := config.LoadCatalog(cfg.PersonasPath)
	if err != nil {
		return fmt.Errorf("persona catalog: %w", err)
	}
	fmt.Fprintf(output, "Persona catalog OK (%d personas)\n", catalog.Len())
	for _, name := range catalog.Names() {
		fmt.Fprintf(output, "  - %s\n", name)
	}

	return nil
}
