package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mchmarny/blogadmin/pkg/config"
)

func newRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:          appName,
		Short:        "Administer the blog navigation tree and content",
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&o.configPath, "config", config.DefaultPath(), "Path to the configuration file")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(o),
		newBrowseCmd(o),
		newTreeCmd(o),
		newExpandCmd(o),
		newBreadcrumbCmd(o),
		newNavCmd(o),
		newLoginURLCmd(o),
		newLoginCmd(o),
		newLogoutCmd(o),
		newWhoamiCmd(o),
		newProfileCmd(o),
		newPostsCmd(o),
		newCommentsCmd(o),
		newAssetsCmd(o),
		newUploadCmd(o),
		newFilesCmd(o),
		newDashboardCmd(o),
	)

	return cmd
}
