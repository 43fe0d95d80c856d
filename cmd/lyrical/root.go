package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiliourt/Lyrical-Sync/internal/config"
	"github.com/xiliourt/Lyrical-Sync/internal/logging"
)

var (
	// global flags
	mprisService string
	syncOffset   float64
	hideHeader   bool
	configPath   string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "lyrical [file]",
	Short: "synchronized LRC lyrics in the terminal",
	Long: `lyrical follows time-synced lyrics (.lrc files, or the lyrics tag of an
audio file) against a playback clock and highlights the active line.

when given a file without a subcommand, it starts the follower.`,
	Version: "0.1.0",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runFollow(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&mprisService, "mpris-service", "m", "", "follow an mpris player (e.g. spotify or org.mpris.MediaPlayer2.spotify)")
	rootCmd.PersistentFlags().Float64VarP(&syncOffset, "sync-offset", "s", 0, "initial sync offset in seconds")
	rootCmd.PersistentFlags().BoolVarP(&hideHeader, "hide-header", "H", false, "hide header section")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lyrical/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	addFollowFlags(rootCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers explicitly set flags over the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("mpris-service") {
		cfg.MprisService = mprisService
	}
	if flags.Changed("sync-offset") {
		cfg.SyncOffset = syncOffset
	}
	if flags.Changed("hide-header") {
		cfg.HideHeader = hideHeader
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupCommand prepares config and console logging for one-shot commands.
func setupCommand(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := logging.Setup(cfg.LogLevel, logging.Console()); err != nil {
		return nil, err
	}

	return cfg, nil
}
