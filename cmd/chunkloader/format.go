package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"chunkloader/builder"
	"chunkloader/clipboard"
	"chunkloader/loader"
)

func newFormatCmd() *cobra.Command {
	var (
		x, y, z string
		world   string
		minutes int
		limit   int
		silent  bool
		name    string
		copyOut bool
	)
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Print a /chunkloader set command",
		Long: "Print the /chunkloader set command for the given settings.\n" +
			"Without --x/--y/--z the loader is placed where the player stands.",
		Example: "  chunkloader format --x 10 --y 64 --z -200 --world the_nether --minutes 120\n" +
			"  chunkloader format --name \"Iron Farm\" --silent --copy",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := builder.New()
			flags := cmd.Flags()

			if flags.Changed("x") || flags.Changed("y") || flags.Changed("z") {
				if err := m.SetMode(loader.ModeCoords); err != nil {
					return err
				}
				if err := m.SetCoords(loader.Coordinates{X: x, Y: y, Z: z}); err != nil {
					return err
				}
			}
			changes := []struct {
				flag, field, value string
			}{
				{"world", "world", world},
				{"minutes", "duration", strconv.Itoa(minutes)},
				{"limit", "limit", strconv.Itoa(limit)},
				{"silent", "notify", strconv.FormatBool(!silent)},
				{"name", "name", name},
			}
			for _, c := range changes {
				if !flags.Changed(c.flag) {
					continue
				}
				if err := m.Apply(c.field, c.value); err != nil {
					return fmt.Errorf("--%s: %w", c.flag, err)
				}
			}

			command := m.Command()
			fmt.Fprintln(cmd.OutOrStdout(), command)

			if copyOut {
				if err := clipboard.Copy(command); err != nil {
					slog.Warn("command not copied", "error", err)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&x, "x", "", "X coordinate")
	f.StringVar(&y, "y", "", "Y coordinate")
	f.StringVar(&z, "z", "", "Z coordinate")
	f.StringVar(&world, "world", "", "Dimension: overworld, the_nether or the_end")
	f.IntVar(&minutes, "minutes", loader.DefaultDuration, fmt.Sprintf("Duration in minutes (%d-%d, step %d)", loader.MinDuration, loader.MaxDuration, loader.DurationStep))
	f.IntVar(&limit, "limit", loader.DefaultLimit, fmt.Sprintf("Loaders per player (%d-%d)", loader.MinLimit, loader.MaxLimit))
	f.BoolVar(&silent, "silent", false, "Do not notify the player")
	f.StringVar(&name, "name", loader.DefaultName, "Loader name (empty omits --name)")
	f.BoolVar(&copyOut, "copy", false, "Also copy the command to the clipboard")
	return cmd
}
