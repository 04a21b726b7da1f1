package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Publisher pushes a finished run report to an external consumer.
type Publisher interface {
	PutReport(ctx context.Context, runID string, report any) error
}

// Orchestrator queues corpus runs for the API and executes them on a single
// worker, so runs never overlap on the filesystem.
type Orchestrator struct {
	runs      *RunStore
	queue     chan *Run
	runner    *Runner
	publisher Publisher
	log       *slog.Logger
	maxQueue  int

	latestMu sync.RWMutex
	latest   *RunReport

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the run queue. publisher may be nil.
func NewOrchestrator(runner *Runner, publisher Publisher, maxQueue int, ttl time.Duration, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		runs:      NewRunStore(ttl),
		queue:     make(chan *Run, maxQueue),
		runner:    runner,
		publisher: publisher,
		log:       log,
		maxQueue:  maxQueue,
	}
}

// Start launches the worker and the run store janitor.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case run, ok := <-o.queue:
				if !ok {
					return
				}
				o.Execute(workerCtx, run)
			}
		}
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.runs.Cleanup()
			}
		}
	}()
}

// Stop shuts down the worker after its current run. The queue stays open so
// a late Submit from a watcher cannot panic; queued runs are abandoned.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a run.
func (o *Orchestrator) Submit(run *Run) error {
	o.runs.Put(run)
	select {
	case o.queue <- run:
		return nil
	default:
		run.SetStatus(StatusFailed, "queue_full")
		runsTotal.WithLabelValues(string(run.Mode), string(StatusFailed)).Inc()
		return fmt.Errorf("run queue is full (%d)", o.maxQueue)
	}
}

// GetRun returns a run by ID.
func (o *Orchestrator) GetRun(id string) *Run {
	return o.runs.Get(id)
}

// Latest returns the most recent completed report, or nil.
func (o *Orchestrator) Latest() *RunReport {
	o.latestMu.RLock()
	defer o.latestMu.RUnlock()
	return o.latest
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Runner returns the runner used for queued runs.
func (o *Orchestrator) Runner() *Runner {
	return o.runner
}

// Execute performs one run synchronously.
func (o *Orchestrator) Execute(ctx context.Context, run *Run) {
	log := o.log.With("run_id", run.ID, "mode", run.Mode)
	start := time.Now()

	run.SetStatus(StatusDiscovering, "discovering")
	paths, err := o.runner.Discover()
	if err != nil {
		o.fail(run, log, "discovering", err)
		return
	}
	total := len(paths)
	if run.Mode == ModeAll {
		total *= 2
	}
	run.SetTotalFiles(total)

	runner := o.runner.WithProgress(func(_ string, findings int) {
		run.DocumentChecked(findings)
	})
	report := &RunReport{RunID: run.ID, Mode: run.Mode}

	if run.Mode == ModeValidate || run.Mode == ModeAll {
		run.SetStatus(StatusValidating, "validating")
		rep, err := runner.Validate(ctx, paths)
		if err != nil {
			o.fail(run, log, "validating", err)
			return
		}
		report.Validation = rep
	}
	if run.Mode == ModeInspect || run.Mode == ModeAll {
		run.SetStatus(StatusInspecting, "inspecting")
		res, err := runner.Inspect(ctx, paths)
		if err != nil {
			o.fail(run, log, "inspecting", err)
			return
		}
		report.Inspection = &res.Report
	}
	report.FinishedAt = time.Now()

	if o.publisher != nil {
		run.SetStatus(StatusPublishing, "publishing")
		if err := o.publisher.PutReport(ctx, run.ID, report); err != nil {
			// The report is still served locally.
			log.Warn("report publish failed", "error", err)
			run.AddError(fmt.Sprintf("publish: %s", err))
		}
	}

	run.SetReport(report)
	o.latestMu.Lock()
	o.latest = report
	o.latestMu.Unlock()

	run.SetStatus(StatusCompleted, "done")
	runsTotal.WithLabelValues(string(run.Mode), string(StatusCompleted)).Inc()
	log.Info("run completed", "files", len(paths), "duration_ms", time.Since(start).Milliseconds())
}

func (o *Orchestrator) fail(run *Run, log *slog.Logger, phase string, err error) {
	log.Error("run failed", "phase", phase, "error", err)
	run.AddError(fmt.Sprintf("%s: %s", phase, err))
	run.SetStatus(StatusFailed, phase)
	runsTotal.WithLabelValues(string(run.Mode), string(StatusFailed)).Inc()
}
