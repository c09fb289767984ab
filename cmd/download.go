package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/yadisk-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var downloadCmd = &cobra.Command{
	Use:   "download <public-url> [names-or-paths...]",
	Short: "Download files behind a public link",
	Long: `Download the selected files of a shared folder.

Files are picked by name or by path inside the shared resource. With no names, or with --all,
every file of the folder is downloaded. Folders are never downloaded recursively.
A failed file does not stop the others; a summary is printed at the end.`,
	Example: `  yadisk-grabber download https://disk.yandex.ru/d/abc123 report.pdf
  yadisk-grabber download https://disk.yandex.ru/d/abc123 --path /photos --category image -o ./photos
  yadisk-grabber download abc123 --names-file names.txt --concurrency 4`,
	Args:             cobra.MinimumNArgs(1),
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		resourcePath, _ := flags.GetString("path")
		namesFile, _ := flags.GetString("names-file")
		all, _ := flags.GetBool("all")
		categories, _ := flags.GetStringSlice("category")
		noCache, _ := flags.GetBool("no-cache")

		app.ExecuteDownloadCommand(cmd.Context(), appConfig, app.DownloadOptions{
			PublicURL:  args[0],
			Path:       resourcePath,
			Names:      args[1:],
			NamesFile:  namesFile,
			All:        all,
			Categories: categories,
			NoCache:    noCache,
		})
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	flags := downloadCmd.Flags()

	flags.StringP("path", "p", "", "folder inside the shared resource, for example /photos/2024.")
	flags.StringP("output", "o", "", "directory to save downloaded files (the path will be created if it doesn't exist).")
	flags.BoolP("all", "a", false, "download every file of the folder.")
	flags.String("names-file", "", "file with one name or path per line.")
	flags.StringSlice("category", nil, "download only these categories: image, video, audio, document, ...")
	flags.Bool("no-cache", false, "ignore the cached listing and ask Yandex Disk again.")
	flags.String("collision", "", "what to do with existing files: overwrite or rename.")
	flags.Int64P("concurrency", "n", 0, "number of files downloaded at the same time.")
	flags.StringP("speed-limit", "s", "", "set download speed limit, for example: 500KB, 1MB, 1.5MB.")
	flags.String("log-level", "", "log level: debug, info, warn, error.")

	rootCmd.AddCommand(downloadCmd)
}
