package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wirecheck/internal/pipeline"
	"github.com/dgallion1/wirecheck/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var noLog, withInspect bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate wireframes as they change",
		Long: `watch validates the whole corpus once, then re-validates each wireframe
as it is saved. A change under includes/ re-validates everything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := a.runner(!noLog)
			check := func(paths []string) {
				rep, err := r.Validate(ctx, paths)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						a.log.Error("validation failed", "error", err)
					}
					return
				}
				for _, res := range rep.Results {
					if len(res.Findings) > 0 {
						fmt.Fprintf(a.out, "%s %s (%s)\n", a.style.status(false), res.Path, plural(len(res.Findings), "issue"))
					}
				}
				fmt.Fprintln(a.out, rep.Summary())
				if withInspect {
					all, err := pipeline.Discover(a.cfg.Dir)
					if err != nil {
						a.log.Error("discover failed", "error", err)
						return
					}
					res, err := r.Inspect(ctx, all)
					if err == nil {
						fmt.Fprintf(a.out, "Wireframe Inspection: %s | %d pattern violations\n", a.style.status(res.OK()), len(res.Violations))
					}
				}
			}

			all, err := pipeline.Discover(a.cfg.Dir)
			if err != nil {
				return err
			}
			check(all)

			w, err := watch.New(a.cfg.WatchDebounce, func(b watch.Batch) {
				paths := b.Paths
				if b.Full {
					all, err := pipeline.Discover(a.cfg.Dir)
					if err != nil {
						a.log.Error("discover failed", "error", err)
						return
					}
					paths = all
				}
				if paths = existing(paths); len(paths) > 0 {
					check(paths)
				}
			}, a.log)
			if err != nil {
				return err
			}
			if err := w.AddRecursive(a.cfg.Dir); err != nil {
				return err
			}

			a.log.Info("watching wireframes", "dir", a.cfg.Dir, "debounce", a.cfg.WatchDebounce)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noLog, "no-log", false, "do not update issues logs")
	cmd.Flags().BoolVar(&withInspect, "inspect", false, "re-run the corpus inspection after each change")
	return cmd
}

// existing drops paths removed since the event fired.
func existing(paths []string) []string {
	out := paths[:0:0]
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}
