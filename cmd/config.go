package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/yadisk-grabber/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		Long: `Write a YAML configuration file with the built-in defaults.

The file is written to --config, or to the default location when --config is not given.
An existing file is kept unless --force is set. Every value can also be set with an
environment variable, for example YADISK_OUTPUT_PATH.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			force, _ := cmd.Flags().GetBool("force")

			app.ExecuteConfigInitCommand(cmd.Context(), configFilenameFromFlag, force)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing configuration file.")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
