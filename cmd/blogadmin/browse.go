package main

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mchmarny/blogadmin/pkg/logger"
	"github.com/mchmarny/blogadmin/pkg/navigation"
	"github.com/mchmarny/blogadmin/pkg/store"
	"github.com/mchmarny/blogadmin/pkg/tui"
)

func newBrowseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse the navigation tree in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// stderr is the screen while the program runs
			w, closeLog, err := openLogFile()
			if err != nil {
				return err
			}
			defer closeLog()
			slog.SetDefault(logger.NewTextLogger(w, o.cfg.Log.Level))

			a, err := o.connect(nil)
			if err != nil {
				return err
			}
			defer a.Close()
			// the alt screen is gone by the time this runs
			defer a.flushNotifications(cmd.ErrOrStderr())

			ctx := cmd.Context()

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if last, ok, err := a.store.Get(ctx, store.KeyLastPath); err != nil {
				slog.Warn("failed to read last path", "error", err)
			} else if ok {
				path = last
			}

			loader := navigation.NewLoader(a.source())
			m := tui.New(loader,
				tui.WithContext(ctx),
				tui.WithPath(path),
				tui.WithStore(a.store),
				tui.WithState(a.state),
			)

			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
				return fmt.Errorf("run browser: %w", err)
			}
			return nil
		},
	}
}
