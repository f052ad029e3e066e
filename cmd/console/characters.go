package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fscarponi/characterai/internal/domain"
	"github.com/fscarponi/characterai/internal/store"
)

func newCharactersCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "characters",
		Short: "Manage the character catalogue",
	}

	withStore := func(fn func(cmd *cobra.Command, repo store.CharacterRepository, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			repo, err := store.NewSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()
			return fn(cmd, repo, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored characters",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, repo store.CharacterRepository, _ []string) error {
			characters, err := repo.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			printCharacterList(cmd.OutOrStdout(), characters)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show one character",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, repo store.CharacterRepository, args []string) error {
			c, err := repo.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("character %q: %w", args[0], store.ErrNotFound)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), c.Preview())
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete one character",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, repo store.CharacterRepository, args []string) error {
			if err := repo.DeleteByName(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete %q: %w", args[0], err)
			}
			_, _ = infoColor.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every character",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, repo store.CharacterRepository, _ []string) error {
			n, err := repo.DeleteAll(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = infoColor.Fprintf(cmd.OutOrStdout(), "Deleted %d characters\n", n)
			return nil
		}),
	})

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed an empty store from the catalogue",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, repo store.CharacterRepository, _ []string) error {
			n, err := store.SeedFromCatalogue(cmd.Context(), repo, seedFile)
			if err != nil {
				return err
			}
			if n == 0 {
				_, _ = infoColor.Fprintln(cmd.OutOrStdout(), "Store is not empty, nothing seeded")
				return nil
			}
			_, _ = infoColor.Fprintf(cmd.OutOrStdout(), "Seeded %d characters\n", n)
			return nil
		}),
	}
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML catalogue to seed from (default: built-in characters)")
	cmd.AddCommand(seedCmd)

	return cmd
}

func printCharacterList(out io.Writer, characters []domain.Character) {
	if len(characters) == 0 {
		_, _ = fmt.Fprintln(out, "No characters found")
		return
	}
	for i, c := range characters {
		_, _ = replyColor.Fprintf(out, "%d. %s", i+1, c.Name)
		_, _ = fmt.Fprintf(out, " (%s)\n", c.Role)
	}
}
