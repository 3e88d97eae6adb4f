package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chunkloader/preset"
)

func newPresetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Inspect and delete saved presets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved presets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), a, func(s *preset.Store) error {
				return printPresets(cmd.OutOrStdout(), s.List())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print the command of a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), a, func(s *preset.Store) error {
				p, ok := s.Get(args[0])
				if !ok {
					return fmt.Errorf("preset %s: %w", args[0], preset.ErrNotFound)
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Command())
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), a, func(s *preset.Store) error {
				if _, ok := s.Get(args[0]); !ok {
					return fmt.Errorf("preset %s: %w", args[0], preset.ErrNotFound)
				}
				left, err := s.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s, %d left\n", args[0], len(left))
				return nil
			})
		},
	})
	return cmd
}

// withStore opens the configured backend, loads the presets and runs fn.
func withStore(ctx context.Context, a *app, fn func(*preset.Store) error) error {
	backend, closer, err := a.cfg.Storage.OpenBackend(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", a.cfg.Storage.Backend, err)
	}
	defer closer.Close()

	s := preset.NewStore(backend, preset.WithKey(a.cfg.Storage.Key))
	s.Initialize(ctx)
	return fn(s)
}

func printPresets(w io.Writer, c preset.Collection) error {
	if len(c) == 0 {
		_, err := fmt.Fprintln(w, "No saved presets.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSAVED\tCOMMAND")
	for _, p := range c {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.DisplayName(), humanize.Time(p.CreatedAt), p.Command())
	}
	return tw.Flush()
}
