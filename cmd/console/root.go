package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fscarponi/characterai/internal/config"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "characterai",
		Short: "Chat with role-play characters from the terminal",
		Long: `Chat with role-play characters from the terminal and manage the character catalogue.

Available subcommands:
  chat        Start an interactive conversation
  characters  List, inspect, delete and seed stored characters

Examples:
  characterai chat
  characterai characters list
  characterai characters show "Luna Starweaver"
  characterai characters seed --file ./characters.yaml`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite character store (default: $DB_PATH)")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		return cfg, nil
	}

	cmd.AddCommand(newChatCmd(loadConfig, logger))
	cmd.AddCommand(newCharactersCmd(loadConfig))
	return cmd
}
