package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"chunkloader/config"
)

// app carries what the subcommands share once the root has run.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "chunkloader",
		Short: "Build /chunkloader commands and manage saved presets",
		Long: "chunkloader assembles /chunkloader set commands for the Minecraft chunk loader plugin.\n" +
			"It can print a single command, serve the live editor API, or manage saved presets.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/chunkloader/config.toml, then ./config.toml)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newFormatCmd())
	cmd.AddCommand(newPresetsCmd(a))
	return cmd
}

func (a *app) load() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		if _, statErr := os.Stat(a.configPath); statErr != nil {
			return fmt.Errorf("config file: %w", statErr)
		}
		cfg, err = config.LoadFiles(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	a.cfg = cfg
	return nil
}
