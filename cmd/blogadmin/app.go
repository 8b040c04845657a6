package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/auth"
	"github.com/mchmarny/blogadmin/pkg/config"
	"github.com/mchmarny/blogadmin/pkg/logger"
	"github.com/mchmarny/blogadmin/pkg/navigation"
	"github.com/mchmarny/blogadmin/pkg/state"
	"github.com/mchmarny/blogadmin/pkg/store"
)

const appName = "blogadmin"

// options holds the global flags and the configuration they resolve to.
type options struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	o.cfg = cfg

	slog.SetDefault(logger.NewTextLogger(cmd.ErrOrStderr(), cfg.Log.Level))
	return nil
}

// app is the wired object graph shared by the commands.
type app struct {
	cfg     *config.Config
	store   store.Store
	session *auth.Session
	client  *api.Client
	state   *state.State
	closers []io.Closer
}

// connect opens the session store and builds an API client over it.
func (o *options) connect(reg prometheus.Registerer) (*app, error) {
	a := &app{cfg: o.cfg, state: state.New()}

	if o.cfg.Store.Path == "" {
		a.store = store.NewMemory()
	} else {
		db, err := store.OpenSQLite(o.cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.store = db
		a.closers = append(a.closers, db)
	}

	a.session = auth.NewSession(a.store)

	opts := []api.Option{
		api.WithTimeout(o.cfg.API.Timeout),
		api.WithRefreshPath(o.cfg.API.RefreshPath),
		api.WithUserAgent(appName + "/" + version),
		api.WithLogger(slog.Default()),
		api.WithAuthFailureHandler(func(err error) {
			a.state.Notify(state.LevelWarning, "Session expired", "run `blogadmin login` to sign in again")
			slog.Warn("session expired", "error", err)
		}),
	}
	if reg != nil {
		opts = append(opts, api.WithRegistry(reg))
	}

	client, err := api.New(o.cfg.API.URL, a.session, opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.client = client
	a.session.Bind(client)

	slog.Debug("connected", "api", client.BaseURL(), "store", o.cfg.Store.Path)
	return a, nil
}

// source returns the tree file when one is configured, the API otherwise.
func (a *app) source() navigation.Source {
	if f := a.cfg.Navigation.TreeFile; f != "" {
		return navigation.File{Path: f}
	}
	return navigation.NewService(a.client)
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// runFunc is a command body that needs a connected app.
type runFunc func(cmd *cobra.Command, args []string, a *app) error

// withApp runs fn with a connected app and closes it afterwards.
func (o *options) withApp(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := o.connect(nil)
		if err != nil {
			return err
		}
		defer a.Close()
		defer a.flushNotifications(cmd.ErrOrStderr())
		return fn(cmd, args, a)
	}
}

// flushNotifications prints and dismisses the pending notifications.
func (a *app) flushNotifications(w io.Writer) {
	for _, n := range a.state.Notifications() {
		msg := n.Message
		if n.Title != "" {
			msg = n.Title + ": " + n.Message
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", n.Level, msg); err != nil {
			slog.Debug("failed to print notification", "error", err)
		}
		a.state.Dismiss(n.ID)
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func openLogFile() (io.Writer, func(), error) {
	p := os.Getenv(logger.EnvVarLogFile)
	if p == "" {
		return nil, func() {}, nil
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", p, err)
	}
	return f, func() { _ = f.Close() }, nil
}
