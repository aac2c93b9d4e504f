// Package cli wires the subreview commands.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "subreview",
		Short: "Side-by-side subtitle review for a video",
		Long: `subreview serves a browser editor that plays a video next to two
subtitle tracks on a shared timeline, so a reviewer can compare an original
and a translated track cue by cue.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (TOML)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Override the log format: console, json or auto")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newInspectCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}
