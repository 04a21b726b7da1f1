package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/wirecheck/internal/api"
	"github.com/dgallion1/wirecheck/internal/config"
	"github.com/dgallion1/wirecheck/internal/pipeline"
	"github.com/dgallion1/wirecheck/internal/publish"
	"github.com/dgallion1/wirecheck/internal/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var port string
	var watchDir bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if port != "" {
				cfg.Port = port
			}
			lvl, _ := config.ParseLevel(cfg.LogLevel)
			log := slog.New(slog.NewJSONHandler(a.out, &slog.HandlerOptions{Level: lvl}))
			a.log = log

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, gCtx := errgroup.WithContext(ctx)

			// Initialize publisher.
			var pub pipeline.Publisher
			if cfg.PublishURL != "" {
				client := publish.NewClient(cfg.PublishURL, cfg.PublishAPIKey, log)
				defer client.Close()
				pub = client
			}

			// Initialize pipeline.
			orch := pipeline.NewOrchestrator(a.runner(true), pub, cfg.MaxQueueSize, cfg.JobTTL, log)
			orch.Start(gCtx)

			if watchDir {
				w, err := watch.New(cfg.WatchDebounce, func(watch.Batch) {
					if err := orch.Submit(pipeline.NewRun(pipeline.ModeAll)); err != nil {
						log.Warn("change-triggered run dropped", "error", err)
					}
				}, log)
				if err != nil {
					return err
				}
				if err := w.AddRecursive(cfg.Dir); err != nil {
					return err
				}
				g.Go(func() error {
					if err := w.Run(gCtx); err != nil && gCtx.Err() == nil {
						return fmt.Errorf("watcher: %w", err)
					}
					return nil
				})
			}

			// Initialize HTTP server.
			srv := api.NewServer(orch, a.stats, log, cfg)
			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			g.Go(func() error {
				log.Info("starting wirecheck", "port", cfg.Port, "dir", cfg.Dir, "publish", pub != nil)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			// Graceful shutdown.
			g.Go(func() error {
				<-gCtx.Done()
				log.Info("shutting down...")

				orch.Stop()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT or 8091)")
	cmd.Flags().BoolVar(&watchDir, "watch", false, "queue a corpus run whenever a wireframe changes")
	return cmd
}
