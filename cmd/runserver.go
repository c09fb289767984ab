package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/yadisk-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var runServerCmd = &cobra.Command{
	Use:   "runserver",
	Short: "Start the web front end",
	Long: `Start a small web front end on --address.

Open /v1/ in a browser, paste a public link, tick the files and press "Download selected".
Files are saved into output_path on the machine running the server.
/api/v1/resources returns listings as JSON, /metrics exposes Prometheus metrics.`,
	Args:             cobra.NoArgs,
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, _ []string) {
		app.ExecuteRunServerCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	flags := runServerCmd.Flags()

	flags.String("address", "", "listen address, for example :8000 or 127.0.0.1:8080.")
	flags.StringP("output", "o", "", "directory to save downloaded files.")
	flags.String("log-level", "", "log level: debug, info, warn, error.")

	rootCmd.AddCommand(runServerCmd)
}
