package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/tasks"
)

func newTasksCommand(cctx *commandContext) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and control processing tasks",
	}

	tasksCmd.AddCommand(newTasksListCommand(cctx))
	tasksCmd.AddCommand(newTasksWatchCommand(cctx))
	tasksCmd.AddCommand(newTasksRestartCommand(cctx))
	tasksCmd.AddCommand(newTasksAbortCommand(cctx))

	return tasksCmd
}

func newTasksListCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks for the active workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				svc := tasks.NewService(r.client, r.logger)
				list, err := svc.List(ctx, space.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTaskTable(list))
				return nil
			})
		},
	}
}

func newTasksWatchCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow task updates over the push channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				svc := tasks.NewService(r.client, r.logger)
				feed := tasks.NewFeed(svc, r.cfg.API.SocketURL, space.ID,
					tasks.WithFeedLogger(r.logger),
					tasks.WithChangeHandler(func(list []tasks.Task) {
						fmt.Fprintln(out, renderTaskTable(list))
					}),
					tasks.WithDisconnectHandler(func(err error) {
						fmt.Fprintf(cmd.ErrOrStderr(), "Connection lost (%v); showing last known state, reconnecting...\n", err)
					}),
				)
				fmt.Fprintf(out, "Watching tasks for %s (ctrl-c to stop)\n", space.Name)
				return feed.Run(ctx)
			})
		},
	}
}

func newTasksRestartCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restart <task-id>",
		Short: "Restart a halted task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				svc := tasks.NewService(r.client, r.logger)
				if err := svc.Restart(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restarted task %s\n", args[0])
				return nil
			})
		},
	}
}

func newTasksAbortCommand(cctx *commandContext) *cobra.Command {
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "abort <task-id>",
		Short: "Abort a task and discard its pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				if !yesFlag {
					ok, err := confirm(cmd, fmt.Sprintf("Abort task %s? This cannot be undone.", args[0]))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
						return nil
					}
				}
				svc := tasks.NewService(r.client, r.logger)
				if err := svc.Abort(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Aborted task %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func renderTaskTable(list []tasks.Task) string {
	rows := make([][]string, 0, len(list))
	for _, task := range list {
		rows = append(rows, []string{
			task.ID,
			task.Title,
			taskState(task),
			renderProgress(task.Flags.Progress()),
		})
	}
	return renderTable([]string{"ID", "Title", "State", "Progress"}, rows, nil)
}

func taskState(task tasks.Task) string {
	switch {
	case task.Flags.Halted():
		return "halted (" + haltedStage(task.Flags) + ")"
	case task.Flags.Completed():
		return "completed"
	default:
		return "processing"
	}
}

func haltedStage(flags tasks.Flags) string {
	for _, stage := range tasks.StageNames {
		if flags.Get(stage) == tasks.FlagHalted {
			return stage
		}
	}
	return "unknown"
}

func renderProgress(quarters tasks.Quarters) string {
	filled := int(quarters)
	return strings.Repeat("#", filled) + strings.Repeat("-", 4-filled) + " " + strconv.Itoa(filled*25) + "%"
}
