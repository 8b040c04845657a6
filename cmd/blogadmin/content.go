package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mchmarny/blogadmin/pkg/content"
	"github.com/mchmarny/blogadmin/pkg/nav"
)

func newPostsCmd(o *options) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List and search posts",
	}
	cmd.PersistentFlags().IntVar(&page, "page", 0, "Zero-based page number")
	cmd.PersistentFlags().IntVar(&size, "size", content.DefaultPageSize, "Page size")

	list := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := content.NewPosts(a.client).List(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}

	search := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search posts by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			p, err := content.NewPosts(a.client).Search(cmd.Context(), args[0], page, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a post",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			p, err := content.NewPosts(a.client).Get(cmd.Context(), nav.ID(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}

	featured := &cobra.Command{
		Use:   "featured",
		Short: "List featured posts",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := content.NewPosts(a.client).Featured(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}

	var limit int
	popular := &cobra.Command{
		Use:   "popular",
		Short: "List the most viewed posts",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := content.NewPosts(a.client).Popular(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}
	popular.Flags().IntVar(&limit, "limit", content.DefaultPageSize, "Number of posts")

	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the latest posts",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := content.NewPosts(a.client).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}
	recent.Flags().IntVar(&limit, "limit", content.DefaultPageSize, "Number of posts")

	byAuthor := &cobra.Command{
		Use:   "by-author <user-id>",
		Short: "List the posts of a user",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			p, err := content.NewPosts(a.client).ByAuthor(cmd.Context(), nav.ID(args[0]), page, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}

	cmd.AddCommand(list, search, get, featured, popular, recent, byAuthor)

	return cmd
}

func newCommentsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read comments",
	}

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent comments",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			c, err := content.NewComments(a.client).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		}),
	}
	recent.Flags().IntVar(&limit, "limit", content.DefaultPageSize, "Number of comments")

	byPost := &cobra.Command{
		Use:   "list <post-id>",
		Short: "List the comments of a post",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			c, err := content.NewComments(a.client).ByPost(cmd.Context(), nav.ID(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		}),
	}

	var page, size int
	byAuthor := &cobra.Command{
		Use:   "by-author <user-id>",
		Short: "List the comments of a user",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			c, err := content.NewComments(a.client).ByAuthor(cmd.Context(), nav.ID(args[0]), page, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		}),
	}
	byAuthor.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	byAuthor.Flags().IntVar(&size, "size", content.DefaultPageSize, "Page size")

	cmd.AddCommand(recent, byPost, byAuthor)

	return cmd
}

func newAssetsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage the asset library",
	}

	var folder string

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the folder tree, or the files of --folder",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			all, err := content.NewAssets(a.client).All(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("folder") {
				return printJSON(cmd.OutOrStdout(), content.FilesIn(all, nav.ID(folder)))
			}
			return printJSON(cmd.OutOrStdout(), content.FolderTree(all))
		}),
	}
	list.Flags().StringVar(&folder, "folder", "", "Folder id, empty for top-level files")

	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			asset, err := content.NewAssets(a.client).Upload(cmd.Context(), filepath.Base(args[0]), f, nav.ID(folder))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), asset)
		}),
	}
	upload.Flags().StringVar(&folder, "folder", "", "Target folder id")

	cmd.AddCommand(list, upload)

	return cmd
}
