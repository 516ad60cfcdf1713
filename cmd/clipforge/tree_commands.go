package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/library"
	"clipforge/internal/spaces"
)

func newLsCommand(cctx *commandContext) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "ls [parent-id]",
		Short: "List folders and files in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(categoryFlag)
			if err != nil {
				return err
			}
			parentID := library.RootID
			if len(args) == 1 {
				parentID = args[0]
			}
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				tree := r.app.Tree(category)

				crumbs, err := tree.FetchBreadcrumbs(ctx, parentID)
				if err != nil {
					return err
				}
				folders, err := tree.FetchFolders(ctx, parentID, space.ID)
				if err != nil {
					return err
				}
				files, err := tree.FetchFiles(ctx, parentID, space.ID)
				if err != nil {
					return err
				}
				library.SortFolders(folders)
				library.SortFiles(files)

				out := cmd.OutOrStdout()
				trail := make([]string, 0, len(crumbs))
				for _, crumb := range crumbs {
					trail = append(trail, crumb.Name)
				}
				fmt.Fprintln(out, strings.Join(trail, " / "))

				rows := make([][]string, 0, len(folders)+len(files))
				for _, folder := range folders {
					shared := ""
					if owner, ok := tree.Store().Owner(parentID); ok && folder.OwnerID != "" && folder.OwnerID != owner {
						shared = "shared"
					}
					rows = append(rows, []string{"dir", folder.ID, folder.Name, "", shared})
				}
				for _, file := range files {
					rows = append(rows, []string{"file", file.ID, file.Name, strings.Join(file.Tags, ","), file.AspectRatio})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Type", "ID", "Name", "Tags", "Notes"},
					rows,
					nil,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Namespace: broll or music")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newMkdirCommand(cctx *commandContext) *cobra.Command {
	var categoryFlag string
	var parentFlag string

	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(categoryFlag)
			if err != nil {
				return err
			}
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				folder, err := r.app.Tree(category).CreateFolder(ctx, parentFlag, args[0], space.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s (%s)\n", folder.Name, folder.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Namespace: broll or music")
	cmd.Flags().StringVar(&parentFlag, "parent", library.RootID, "Parent folder id")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newRenameCommand(cctx *commandContext) *cobra.Command {
	var categoryFlag string
	var parentFlag string
	var fileFlag bool

	cmd := &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename a folder or file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(categoryFlag)
			if err != nil {
				return err
			}
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				tree := r.app.Tree(category)
				if fileFlag {
					err = tree.RenameFile(ctx, args[0], parentFlag, args[1])
				} else {
					err = tree.RenameFolder(ctx, args[0], parentFlag, args[1])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", args[1])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Namespace: broll or music")
	cmd.Flags().StringVar(&parentFlag, "parent", library.RootID, "Parent folder id")
	cmd.Flags().BoolVar(&fileFlag, "file", false, "Rename a file instead of a folder")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newRmCommand(cctx *commandContext) *cobra.Command {
	var categoryFlag string
	var parentFlag string
	var fileFlag bool
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a folder or file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(categoryFlag)
			if err != nil {
				return err
			}
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				if !yesFlag {
					kind := "folder"
					if fileFlag {
						kind = "file"
					}
					ok, err := confirm(cmd, fmt.Sprintf("Delete %s %s? This cannot be undone.", kind, args[0]))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
						return nil
					}
				}

				tree := r.app.Tree(category)
				if fileFlag {
					err = tree.DeleteFile(ctx, args[0], parentFlag)
				} else {
					err = tree.DeleteFolder(ctx, args[0], parentFlag, space.ID)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Namespace: broll or music")
	cmd.Flags().StringVar(&parentFlag, "parent", library.RootID, "Parent folder id")
	cmd.Flags().BoolVar(&fileFlag, "file", false, "Delete a file instead of a folder")
	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newMvCommand(cctx *commandContext) *cobra.Command {
	var categoryFlag string
	var fromFlag string
	var fileFlag bool

	cmd := &cobra.Command{
		Use:   "mv <id> <dest-folder-id>",
		Short: "Move a folder or file into another directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(categoryFlag)
			if err != nil {
				return err
			}
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				tree := r.app.Tree(category)
				destID := args[1]

				// Load the destination so ownership is known before the move.
				if destID != library.RootID {
					if _, err := tree.FetchFolders(ctx, destID, space.ID); err != nil {
						return err
					}
				}

				if fileFlag {
					files, err := tree.FetchFiles(ctx, fromFlag, space.ID)
					if err != nil {
						return err
					}
					file, ok := findFile(files, args[0])
					if !ok {
						return fmt.Errorf("file %s not found under %s", args[0], fromFlag)
					}
					file.Parent = fromFlag
					tree.StageFileMove(file)
					if err := tree.CompleteFileMove(ctx, destID); err != nil {
						return err
					}
				} else {
					folders, err := tree.FetchFolders(ctx, fromFlag, space.ID)
					if err != nil {
						return err
					}
					folder, ok := findFolder(folders, args[0])
					if !ok {
						return fmt.Errorf("folder %s not found under %s", args[0], fromFlag)
					}
					folder.Parent = fromFlag
					if folder.OwnerID == "" {
						if owner, ok := tree.Store().Owner(fromFlag); ok {
							folder.OwnerID = owner
						}
					}
					tree.StageFolderMove(folder)
					if err := tree.CompleteFolderMove(ctx, destID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s into %s\n", args[0], destID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Namespace: broll or music")
	cmd.Flags().StringVar(&fromFlag, "from", library.RootID, "Current parent folder id")
	cmd.Flags().BoolVar(&fileFlag, "file", false, "Move a file instead of a folder")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newShareCommand(cctx *commandContext) *cobra.Command {
	var categoryFlag string
	var fromFlag string
	var userFlags []string
	var listFlag bool

	cmd := &cobra.Command{
		Use:   "share <folder-id>",
		Short: "Share a folder with other workspaces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(categoryFlag)
			if err != nil {
				return err
			}
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				tree := r.app.Tree(category)
				svc := tree.Service()

				if listFlag {
					shared, err := svc.SharedSpaces(ctx, args[0], space.ID)
					if err != nil {
						return err
					}
					rows := make([][]string, 0, len(shared))
					for _, sp := range shared {
						rows = append(rows, []string{sp.ID, sp.Name})
					}
					fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name"}, rows, nil))
					return nil
				}

				if len(userFlags) == 0 {
					return fmt.Errorf("pass at least one --user email (or --list to show current grants)")
				}

				folders, err := tree.FetchFolders(ctx, fromFlag, space.ID)
				if err != nil {
					return err
				}
				folder, ok := findFolder(folders, args[0])
				if !ok {
					return fmt.Errorf("folder %s not found under %s", args[0], fromFlag)
				}

				var grantees []spaces.Space
				for _, email := range userFlags {
					userSpaces, err := svc.SpacesOfUser(ctx, email)
					if err != nil {
						return err
					}
					if len(userSpaces) == 0 {
						return fmt.Errorf("no workspaces found for %s", email)
					}
					grantees = append(grantees, userSpaces...)
				}

				if err := tree.Share(ctx, folder, space.ID, grantees); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Shared %s with %d workspace(s)\n", folder.Name, len(grantees))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Namespace: broll or music")
	cmd.Flags().StringVar(&fromFlag, "from", library.RootID, "Parent folder id")
	cmd.Flags().StringArrayVar(&userFlags, "user", nil, "Email of a user whose workspaces get access (repeatable)")
	cmd.Flags().BoolVar(&listFlag, "list", false, "List the workspaces the folder is shared with")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newTagCommand(cctx *commandContext) *cobra.Command {
	var categoryFlag string
	var fromFlag string
	var tagsFlag string
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "tag [file-id]",
		Short: "Edit file tags or list every known tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(categoryFlag)
			if err != nil {
				return err
			}
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				space, err := r.requireSpace()
				if err != nil {
					return err
				}
				tree := r.app.Tree(category)

				if allFlag {
					tags, err := tree.Service().AllTags(ctx, category, space.ID)
					if err != nil {
						return err
					}
					for _, tag := range tags {
						fmt.Fprintln(cmd.OutOrStdout(), tag)
					}
					return nil
				}

				if len(args) != 1 {
					return fmt.Errorf("pass a file id (or --all to list tags)")
				}
				files, err := tree.FetchFiles(ctx, fromFlag, space.ID)
				if err != nil {
					return err
				}
				file, ok := findFile(files, args[0])
				if !ok {
					return fmt.Errorf("file %s not found under %s", args[0], fromFlag)
				}
				file.Parent = fromFlag

				tags := splitTags(tagsFlag)
				if err := tree.ChangeTags(ctx, file, tags); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tags set to [%s]\n", strings.Join(tags, ", "))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Namespace: broll or music")
	cmd.Flags().StringVar(&fromFlag, "from", library.RootID, "Parent folder id")
	cmd.Flags().StringVar(&tagsFlag, "tags", "", "Comma-separated replacement tag list")
	cmd.Flags().BoolVar(&allFlag, "all", false, "List every tag in the workspace")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func findFolder(folders []library.Folder, id string) (library.Folder, bool) {
	for _, folder := range folders {
		if folder.ID == id {
			return folder, true
		}
	}
	return library.Folder{}, false
}

func findFile(files []library.File, id string) (library.File, bool) {
	for _, file := range files {
		if file.ID == id {
			return file, true
		}
	}
	return library.File{}, false
}
