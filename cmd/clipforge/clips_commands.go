package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/api"
	"clipforge/internal/clips"
)

func newClipsCommand(cctx *commandContext) *cobra.Command {
	clipsCmd := &cobra.Command{
		Use:   "clips",
		Short: "Browse generated clips by pipeline progress",
	}

	clipsCmd.AddCommand(newClipsListCommand(cctx))

	return clipsCmd
}

func newClipsListCommand(cctx *commandContext) *cobra.Command {
	var bucketFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clips for the active workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				bucket := clips.Bucket(bucketFlag)
				if !clips.ValidBucket(bucket) {
					return api.Wrap(api.ErrValidation, "clips", fmt.Sprintf("unknown bucket %q (want %s, %s, or %s)", bucketFlag, clips.BucketNoTranscript, clips.BucketNoSubclips, clips.BucketAll), nil)
				}
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				svc := clips.NewService(r.client, r.logger)
				list, err := svc.List(ctx, space.ID, bucket)
				if err != nil {
					return err
				}
				r.app.Clips().Set(bucket, list)

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderClipTable(list))
				if bucket != clips.BucketAll {
					counts := clips.Count(list)
					fmt.Fprintf(out, "longform: %d  shortform: %d\n", counts.Longform, counts.Shortform)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bucketFlag, "bucket", string(clips.BucketAll), "Clip view: no-transcript, no-subclips, or all")
	return cmd
}

func renderClipTable(list []clips.Clip) string {
	rows := make([][]string, 0, len(list))
	for _, clip := range list {
		rows = append(rows, []string{
			clip.ID,
			clip.Name,
			clip.AspectRatio,
			yesNo(clip.Transcript != ""),
		})
	}
	return renderTable([]string{"ID", "Name", "Aspect", "Transcribed"}, rows, nil)
}
