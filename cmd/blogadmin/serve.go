package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/blogadmin/pkg/logger"
	"github.com/mchmarny/blogadmin/pkg/nav"
	"github.com/mchmarny/blogadmin/pkg/navigation"
	"github.com/mchmarny/blogadmin/pkg/server"
)

func newServeCmd(o *options) *cobra.Command {
	var (
		port  int
		watch bool
		tls   server.TLSConfig
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the navigation resolver over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.SetDefaultLoggerWithLevel(appName, version, o.cfg.Log.Level)
			slog.Info("starting "+appName, "commit", commit, "date", date)

			if !cmd.Flags().Changed("port") {
				port = o.cfg.Server.Port
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			a, err := o.connect(reg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gCtx := errgroup.WithContext(ctx)

			src := a.source()
			if watch && a.cfg.Navigation.TreeFile != "" {
				ws, err := newWatchedSource(a.cfg.Navigation.TreeFile)
				if err != nil {
					return err
				}
				g.Go(func() error {
					return navigation.WatchFile(gCtx, a.cfg.Navigation.TreeFile, ws.set)
				})
				src = ws
			}

			mux := http.NewServeMux()
			navigation.NewHandler(src).Register(mux)

			opts := []server.Option{
				server.WithPort(port),
				server.WithLogger(slog.Default()),
				server.WithHandler("/navigation/", mux),
				server.WithSimpleHealth(),
				server.WithReadinessCheck(server.ReadyFunc(func(ctx context.Context) error {
					_, err := src.Tree(ctx)
					return err
				})),
				server.WithMetrics(reg),
			}
			if tls.CertFile != "" || tls.KeyFile != "" {
				opts = append(opts, server.WithTLS(tls))
			}

			srv := server.New(opts...)
			g.Go(func() error { return srv.Serve(gCtx) })

			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&port, "port", server.DefaultPort, "Port to run the server on")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the tree file when it changes")
	cmd.Flags().StringVar(&tls.CertFile, "tls-cert", "", "TLS certificate file")
	cmd.Flags().StringVar(&tls.KeyFile, "tls-key", "", "TLS key file")

	return cmd
}

// watchedSource serves the last good tree read from a watched file.
type watchedSource struct {
	mu   sync.RWMutex
	tree []nav.Node
}

func newWatchedSource(path string) (*watchedSource, error) {
	tree, err := navigation.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &watchedSource{tree: tree}, nil
}

func (w *watchedSource) set(tree []nav.Node, err error) {
	if err != nil {
		slog.Warn("keeping previous navigation tree", "error", err)
		return
	}

	w.mu.Lock()
	w.tree = tree
	w.mu.Unlock()

	slog.Info("navigation tree reloaded", "nodes", nav.Count(tree))
}

func (w *watchedSource) Tree(context.Context) ([]nav.Node, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tree, nil
}
