package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/yadisk-grabber/internal/app"
	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals // Closes the log file opened by initConfig.
	closeLogger = func() {}

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "yadisk-grabber",
		Short: "Browse and download files shared by public Yandex Disk links.",
		Long: `Yandex Disk Grabber is a CLI tool for public Yandex Disk links.
It can:
- List the files and folders behind a public link
- Download selected files, or every file of a folder
- Serve a small web front end for the same tasks

Listings are cached for a short time, failed downloads never stop the others,
and a summary is printed at the end of every download.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		closeLogger()
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
	}

	closeLogger = app.SetupLogger(cmd.Context(), appConfig)
}

// bindFlagsToConfig copies the flags set on the command line over the configuration values.
//
//nolint:cyclop // One branch per flag.
func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("collision"); flag != nil && flag.Changed {
		cfg.CollisionPolicy, _ = flags.GetString("collision")
	}

	if flag := flags.Lookup("concurrency"); flag != nil && flag.Changed {
		cfg.MaxConcurrentDownloads, _ = flags.GetInt64("concurrency")
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	if flag := flags.Lookup("sort"); flag != nil && flag.Changed {
		cfg.Sort, _ = flags.GetString("sort")
	}

	if flag := flags.Lookup("address"); flag != nil && flag.Changed {
		cfg.ServerAddress, _ = flags.GetString("address")
	}

	if flag := flags.Lookup("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	return config.ValidateConfig(cfg)
}
