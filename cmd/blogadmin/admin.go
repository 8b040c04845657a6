package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mchmarny/blogadmin/pkg/auth"
	"github.com/mchmarny/blogadmin/pkg/content"
	"github.com/mchmarny/blogadmin/pkg/state"
)

func newUploadCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload images and files to the blog storage",
	}

	for _, kind := range []string{content.UploadImage, content.UploadThumbnail, content.UploadFile} {
		cmd.AddCommand(&cobra.Command{
			Use:   kind + " <file>",
			Short: fmt.Sprintf("Upload a %s", kind),
			Args:  cobra.ExactArgs(1),
			RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()

				up, err := content.NewUploads(a.client).Upload(cmd.Context(), kind, filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), up)
			}),
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <url>",
		Short: "Check that a URL points at an image",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			res, err := content.NewUploads(a.client).ValidateURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		}),
	})

	return cmd
}

func newFilesCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Inspect and remove stored uploads",
	}

	fileArg := func(s string) (content.FileRef, error) {
		ref, ok := content.ParseFileURL(s)
		if !ok {
			return content.FileRef{}, fmt.Errorf("%q is not a stored file, want <dir>/<month>/<name>", s)
		}
		return ref, nil
	}

	list := &cobra.Command{
		Use:   "list [dir]",
		Short: "List the stored files of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			files, err := content.NewFiles(a.client).List(cmd.Context(), dir)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), files)
		}),
	}

	exists := &cobra.Command{
		Use:   "exists <file-url>",
		Short: "Check whether a stored file is present",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ref, err := fileArg(args[0])
			if err != nil {
				return err
			}
			ok, err := content.NewFiles(a.client).Exists(cmd.Context(), ref)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
			return err
		}),
	}

	del := &cobra.Command{
		Use:   "delete <file-url>",
		Short: "Delete a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ref, err := fileArg(args[0])
			if err != nil {
				return err
			}
			if err := content.NewFiles(a.client).Delete(cmd.Context(), ref); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", ref)
			return err
		}),
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print upload storage statistics",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			s, err := content.NewFiles(a.client).Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		}),
	}

	cmd.AddCommand(list, exists, del, stats)

	return cmd
}

func newDashboardCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Read the admin dashboard",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print user, post, asset and view counters",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			s, err := content.NewDashboard(a.client).Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		}),
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the backend system status",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			s, err := content.NewDashboard(a.client).SystemStatus(cmd.Context())
			if err != nil {
				return err
			}
			if !s.Healthy() {
				a.state.Notify(state.LevelWarning, "System status", "backend reports "+s.Status)
			}
			return printJSON(cmd.OutOrStdout(), s)
		}),
	}

	var limit int
	activity := &cobra.Command{
		Use:   "activity",
		Short: "List recent admin activity",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			logs, err := content.NewDashboard(a.client).ActivityLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), logs)
		}),
	}
	activity.Flags().IntVar(&limit, "limit", content.DefaultPageSize, "Number of entries")

	cmd.AddCommand(stats, status, activity)

	return cmd
}

func newProfileCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change or delete the signed-in account",
	}

	var p auth.ProfileUpdate
	update := &cobra.Command{
		Use:   "update",
		Short: "Change nickname, email or profile image",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			resp, err := a.session.UpdateProfile(cmd.Context(), p)
			if err != nil {
				return err
			}
			if resp.Message != "" {
				a.state.Notify(state.LevelSuccess, "Profile", resp.Message)
			}
			return printJSON(cmd.OutOrStdout(), resp.User)
		}),
	}
	update.Flags().StringVar(&p.Nickname, "nickname", "", "New nickname, 2 to 20 characters")
	update.Flags().StringVar(&p.Email, "email", "", "New email")
	update.Flags().StringVar(&p.ProfileImage, "image", "", "Profile image URL")
	_ = update.MarkFlagRequired("nickname")
	_ = update.MarkFlagRequired("email")

	withdraw := &cobra.Command{
		Use:   "withdraw <kakao-access-token>",
		Short: "Delete the account and sign out",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.session.Withdraw(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "account deleted")
			return err
		}),
	}

	cmd.AddCommand(update, withdraw)

	return cmd
}
