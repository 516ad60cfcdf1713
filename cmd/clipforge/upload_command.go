package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"clipforge/internal/library"
	"clipforge/internal/upload"
)

func newUploadCommand(cctx *commandContext) *cobra.Command {
	var categoryFlag string
	var parentFlag string
	var nameFlag string
	var tagsFlag string
	var aspectFlag string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a media file in parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(categoryFlag)
			if err != nil {
				return err
			}
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				user, err := r.requireUser()
				if err != nil {
					return err
				}
				space, err := r.requireSpace()
				if err != nil {
					return err
				}

				path := args[0]
				name := strings.TrimSpace(nameFlag)
				if name == "" {
					base := filepath.Base(path)
					name = strings.TrimSuffix(base, filepath.Ext(base))
				}

				bar := progressbar.NewOptions(100,
					progressbar.OptionSetDescription("uploading"),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)

				engine := upload.New(r.client,
					upload.WithPartSize(r.cfg.PartSize()),
					upload.WithLogger(r.logger),
					upload.WithProgress(func(percent float64) {
						_ = bar.Set(int(percent))
					}),
				)

				result, err := engine.Upload(ctx, upload.Request{
					Path:        path,
					Name:        name,
					Category:    category,
					ParentID:    parentFlag,
					SpaceID:     space.ID,
					UserID:      user.ID,
					Tags:        splitTags(tagsFlag),
					AspectRatio: aspectFlag,
				})
				if err != nil {
					return err
				}
				_ = bar.Finish()

				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s in %d part(s)\n", name+category.Extension(), result.Parts)
				fmt.Fprintf(cmd.OutOrStdout(), "Asset %s stored at %s\n", result.AssetID, result.Location)

				r.app.Tree(category).Store().PushFile(library.File{
					ID:          result.AssetID,
					Name:        name + category.Extension(),
					Parent:      parentFlag,
					Link:        result.Location,
					Tags:        splitTags(tagsFlag),
					AspectRatio: result.AspectRatio,
					OwnerID:     space.ID,
				})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Namespace: broll or music")
	cmd.Flags().StringVar(&parentFlag, "parent", library.RootID, "Destination folder id")
	cmd.Flags().StringVar(&nameFlag, "name", "", "Asset name (defaults to the file name without extension)")
	cmd.Flags().StringVar(&tagsFlag, "tags", "", "Comma-separated tag list")
	cmd.Flags().StringVar(&aspectFlag, "aspect", "", "Aspect ratio for broll: shortform or longform")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
