package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/yadisk-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var listCmd = &cobra.Command{
	Use:   "list <public-url>",
	Short: "List the files and folders behind a public link",
	Long: `List the entries of a shared folder as a table.

The argument is a public link such as https://disk.yandex.ru/d/abc123 or a raw public key.
A folder inside the shared resource can be given with --path or as part of the link.`,
	Example: `  yadisk-grabber list https://disk.yandex.ru/d/abc123
  yadisk-grabber list https://disk.yandex.ru/d/abc123 --path /photos --category image`,
	Args:             cobra.ExactArgs(1),
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		resourcePath, _ := flags.GetString("path")
		categories, _ := flags.GetStringSlice("category")
		noCache, _ := flags.GetBool("no-cache")

		app.ExecuteListCommand(cmd.Context(), appConfig, app.ListOptions{
			PublicURL:  args[0],
			Path:       resourcePath,
			Categories: categories,
			NoCache:    noCache,
		})
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	flags := listCmd.Flags()

	flags.StringP("path", "p", "", "folder inside the shared resource, for example /photos/2024.")
	flags.StringSlice("category", nil, "show only these categories: image, video, audio, document, ...")
	flags.Bool("no-cache", false, "ignore the cached listing and ask Yandex Disk again.")
	flags.String("sort", "", "sort order: name, path, created, modified or size; prefix with '-' to reverse.")
	flags.String("log-level", "", "log level: debug, info, warn, error.")

	rootCmd.AddCommand(listCmd)
}
