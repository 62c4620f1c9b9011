package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/pkgsmith/internal/logger"
	"github.com/oshokin/pkgsmith/internal/packager"
	"github.com/oshokin/pkgsmith/internal/service/build"
	"github.com/oshokin/pkgsmith/internal/version"
)

var (
	// configPath to the global settings YAML file.
	configPath string

	// logLevel sets the minimum level for console output.
	logLevel string

	// rootCmd represents the base command for the packaging tool.
	rootCmd = &cobra.Command{
		Use:   "pkgsmith",
		Short: "Assemble a staged install tree into platform-native installer packages",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}

	// buildCmd builds one artifact per requested format.
	buildCmd = &cobra.Command{
		Use:   "build [project-file] [format...]",
		Short: "Build installer packages for the requested formats",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &build.Options{
				ProjectPath: args[0],
				ConfigPath:  configPath,
				Formats:     args[1:],
			}

			return build.Run(ctx, options)
		},
	}

	// formatsCmd lists the supported package formats.
	formatsCmd = &cobra.Command{
		Use:   "formats",
		Short: "List supported package formats",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(packager.Formats(), "\n"))
		},
	}
)

// Execute runs the pkgsmith CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug, info, warn, error)")
	buildCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the global settings file")

	rootCmd.AddCommand(buildCmd, formatsCmd)
}
