// Package cmd defines the explainer CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for explainer
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explainer",
		Short: "Narrated explainer-video generator",
		Long: `Explainer turns a topic and a persona into a short narrated video.

It writes a script in the persona's style, synthesizes and transcribes
the narration, renders per-segment visuals through a self-healing code
generation loop with image and placeholder fallbacks, lip-syncs the
persona's base video, and composites everything into a vertical clip.

The bot command runs the full loop against social-media mentions.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewBotCommand())
	cmd.AddCommand(NewValidateCommand())

	return cmd
}
