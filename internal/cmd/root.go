// Package cmd implements the waysmoke command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deedles.dev/waysmoke/internal/config"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/wstk"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "waysmoke",
		Short: "Waysmoke - a desktop shell for wlroots compositors",
		Long: `Waysmoke draws shell surfaces, such as a dock and a wallpaper, on
every output of a Wayland compositor that supports the layer shell
protocol.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

// Execute runs the root command
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default is $XDG_CONFIG_HOME/waysmoke/waysmoke.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	viper.BindPFlag("logging.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if level := config.Get().Logging.LogLevel; level != "" {
		logger.SetLevel(level)
	}
	gg.SetLogger(logger.Slog("gg"))

	logger.Debug("loaded config", "path", config.GetConfigPath())
	return nil
}

// signalContext returns a context that is canceled on SIGINT or
// SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// connect dials the compositor with the current configuration.
func connect() (*wstk.Env, error) {
	env, err := wstk.Connect(config.Get())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to compositor: %w", err)
	}
	return env, nil
}

// supervise keeps an instance from factory on every output until ctx
// is canceled or no instances remain.
func supervise(ctx context.Context, env *wstk.Env, factory wstk.Factory) error {
	sup := wstk.NewSupervisor(ctx, env, factory)
	defer sup.Close()

	logger.Info("started", "outputs", len(sup.Instances()))
	for {
		ok, err := sup.Step(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				logger.Info("shutting down")
				return nil
			}
			return fmt.Errorf("event loop: %w", err)
		}
		if !ok {
			logger.Info("no surfaces left")
			return nil
		}
	}
}
