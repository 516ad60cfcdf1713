package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSpacesCommand(cctx *commandContext) *cobra.Command {
	spacesCmd := &cobra.Command{
		Use:   "spaces",
		Short: "Manage workspaces",
	}

	spacesCmd.AddCommand(newSpacesListCommand(cctx))
	spacesCmd.AddCommand(newSpacesUseCommand(cctx))

	return spacesCmd
}

func newSpacesListCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces for the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				if _, err := r.requireUser(); err != nil {
					return err
				}
				list, err := r.app.RefreshSpaces(ctx)
				if err != nil {
					return err
				}
				active := r.app.ActiveSpace()

				rows := make([][]string, 0, len(list))
				for _, space := range list {
					current := ""
					if active != nil && active.ID == space.ID {
						current = "*"
					}
					rows = append(rows, []string{current, space.ID, space.Name, space.Color})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"", "ID", "Name", "Color"},
					rows,
					nil,
				))
				return nil
			})
		},
	}
}

func newSpacesUseCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "use <space-id>",
		Short: "Switch the active workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				if _, err := r.requireUser(); err != nil {
					return err
				}
				list, err := r.app.RefreshSpaces(ctx)
				if err != nil {
					return err
				}
				for _, space := range list {
					if space.ID == args[0] || space.Name == args[0] {
						if err := r.app.SetActiveSpace(space); err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "Active space set to %s (%s)\n", space.Name, space.ID)
						return nil
					}
				}
				return fmt.Errorf("no space matches %q; run `clipforge spaces list`", args[0])
			})
		},
	}
}
