package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/presets"
)

func newPresetsCommand(cctx *commandContext) *cobra.Command {
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage rendering presets",
	}

	presetsCmd.AddCommand(newPresetsListCommand(cctx))
	presetsCmd.AddCommand(newPresetsCreateCommand(cctx))
	presetsCmd.AddCommand(newPresetsUpdateCommand(cctx))
	presetsCmd.AddCommand(newPresetsDeleteCommand(cctx))

	return presetsCmd
}

func newPresetsListCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List presets for the active workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				svc := presets.NewService(r.client, r.logger)
				list, err := svc.List(ctx, space.ID)
				if err != nil {
					return err
				}
				r.app.Presets().Set(list)

				rows := make([][]string, 0, len(list))
				for _, preset := range list {
					rows = append(rows, []string{
						preset.ID,
						preset.Name,
						preset.Options.AspectRatio,
						preset.Options.Font,
						yesNo(preset.IsOwner),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Aspect", "Font", "Owned"},
					rows,
					nil,
				))
				return nil
			})
		},
	}
}

func presetOptionFlags(cmd *cobra.Command, opts *presets.Options) {
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Video filter name")
	cmd.Flags().StringVar(&opts.Font, "font", "", "Caption font")
	cmd.Flags().IntVar(&opts.FontSize, "font-size", 24, "Caption font size")
	cmd.Flags().BoolVar(&opts.FontCapitalization, "capitalize", false, "Capitalize captions")
	cmd.Flags().StringVar(&opts.FontPosition, "font-position", "bottom", "Caption position")
	cmd.Flags().StringVar(&opts.AspectRatio, "aspect", "", "Aspect ratio: shortform or longform")
	cmd.Flags().StringVar(&opts.BackgroundColor, "background", "#000000", "Background color")
	cmd.Flags().StringVar(&opts.FontColor, "font-color", "#ffffff", "Caption color")
	cmd.Flags().IntVar(&opts.Scaling, "scaling", 100, "Caption scaling percent (100-200)")
	cmd.Flags().BoolVar(&opts.BrollToggle, "broll", false, "Enable automatic broll inserts")
	cmd.Flags().StringVar(&opts.GlowColor, "glow", "", "Caption glow color")
	cmd.Flags().IntVar(&opts.ShadowWidth, "shadow", 0, "Caption shadow width")
	cmd.Flags().StringVar(&opts.StrokeColor, "stroke-color", "", "Caption stroke color")
	cmd.Flags().IntVar(&opts.StrokeWidth, "stroke-width", 0, "Caption stroke width")
}

func newPresetsCreateCommand(cctx *commandContext) *cobra.Command {
	var colorFlag string
	var opts presets.Options

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				svc := presets.NewService(r.client, r.logger)
				preset, err := svc.Create(ctx, space.ID, args[0], colorFlag, opts, presets.MediaIDs{})
				if err != nil {
					return err
				}
				r.app.Presets().Add(*preset)
				fmt.Fprintf(cmd.OutOrStdout(), "Created preset %s (%s)\n", preset.Name, preset.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&colorFlag, "color", "#888888", "Preset accent color")
	presetOptionFlags(cmd, &opts)
	return cmd
}

func newPresetsUpdateCommand(cctx *commandContext) *cobra.Command {
	var nameFlag string
	var colorFlag string
	var opts presets.Options

	cmd := &cobra.Command{
		Use:   "update <preset-id>",
		Short: "Update a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				svc := presets.NewService(r.client, r.logger)

				// Start from the server copy so unset flags keep their values.
				list, err := svc.List(ctx, space.ID)
				if err != nil {
					return err
				}
				var current *presets.Preset
				for i := range list {
					if list[i].ID == args[0] {
						current = &list[i]
						break
					}
				}
				if current == nil {
					return fmt.Errorf("preset %s not found", args[0])
				}
				if !current.IsOwner {
					return fmt.Errorf("preset %s belongs to another workspace", args[0])
				}

				updated := *current
				if cmd.Flags().Changed("name") {
					updated.Name = nameFlag
				}
				if cmd.Flags().Changed("color") {
					updated.Color = colorFlag
				}
				applyChangedOptionFlags(cmd, &updated.Options, opts)

				if err := svc.Update(ctx, space.ID, updated); err != nil {
					return err
				}
				r.app.Presets().Apply(updated)
				fmt.Fprintf(cmd.OutOrStdout(), "Updated preset %s\n", updated.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "", "New preset name")
	cmd.Flags().StringVar(&colorFlag, "color", "", "New accent color")
	presetOptionFlags(cmd, &opts)
	return cmd
}

// applyChangedOptionFlags copies only the options whose flags were set on the
// command line, leaving the rest at their server values.
func applyChangedOptionFlags(cmd *cobra.Command, dst *presets.Options, src presets.Options) {
	flagToApply := map[string]func(){
		"filter":        func() { dst.Filter = src.Filter },
		"font":          func() { dst.Font = src.Font },
		"font-size":     func() { dst.FontSize = src.FontSize },
		"capitalize":    func() { dst.FontCapitalization = src.FontCapitalization },
		"font-position": func() { dst.FontPosition = src.FontPosition },
		"aspect":        func() { dst.AspectRatio = src.AspectRatio },
		"background":    func() { dst.BackgroundColor = src.BackgroundColor },
		"font-color":    func() { dst.FontColor = src.FontColor },
		"scaling":       func() { dst.Scaling = src.Scaling },
		"broll":         func() { dst.BrollToggle = src.BrollToggle },
		"glow":          func() { dst.GlowColor = src.GlowColor },
		"shadow":        func() { dst.ShadowWidth = src.ShadowWidth },
		"stroke-color":  func() { dst.StrokeColor = src.StrokeColor },
		"stroke-width":  func() { dst.StrokeWidth = src.StrokeWidth },
	}
	for name, apply := range flagToApply {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func newPresetsDeleteCommand(cctx *commandContext) *cobra.Command {
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "delete <preset-id>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				if !yesFlag {
					ok, err := confirm(cmd, fmt.Sprintf("Delete preset %s? This cannot be undone.", args[0]))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
						return nil
					}
				}
				svc := presets.NewService(r.client, r.logger)
				if err := svc.Delete(ctx, space.ID, args[0]); err != nil {
					return err
				}
				r.app.Presets().Remove(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
