package pipeline

import (
	"sync"
	"time"
)

// RunStatus represents the state of a queued corpus run.
type RunStatus string

const (
	StatusQueued      RunStatus = "queued"
	StatusDiscovering RunStatus = "discovering"
	StatusValidating  RunStatus = "validating"
	StatusInspecting  RunStatus = "inspecting"
	StatusPublishing  RunStatus = "publishing"
	StatusCompleted   RunStatus = "completed"
	StatusFailed      RunStatus = "failed"
)

// Run tracks one corpus run requested through the API.
type Run struct {
	mu sync.Mutex

	ID     string    `json:"run_id"`
	Mode   Mode      `json:"mode"`
	Status RunStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	report *RunReport
	errors []string
}

// Progress counts documents through a run.
type Progress struct {
	TotalFiles   int      `json:"total_files"`
	FilesChecked int      `json:"files_checked"`
	Findings     int      `json:"findings"`
	Errors       []string `json:"errors"`
}

// NewRun returns a queued run with a fresh ID.
func NewRun(mode Mode) *Run {
	now := time.Now()
	return &Run{
		ID:        NewRunID(),
		Mode:      mode,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Cleanup removes expired runs.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		run.mu.Lock()
		stale := now.Sub(run.UpdatedAt) > s.ttl
		run.mu.Unlock()
		if stale {
			delete(s.runs, id)
		}
	}
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// AddError records an error.
func (r *Run) AddError(err string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	r.Progress.Errors = r.errors
	r.UpdatedAt = time.Now()
}

// SetTotalFiles records how many documents the run covers.
func (r *Run) SetTotalFiles(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.TotalFiles = n
	r.UpdatedAt = time.Now()
}

// DocumentChecked advances progress by one document.
func (r *Run) DocumentChecked(findings int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.FilesChecked++
	r.Progress.Findings += findings
	r.UpdatedAt = time.Now()
}

// SetReport attaches the finished report.
func (r *Run) SetReport(rep *RunReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report = rep
}

// Report returns the finished report, or nil while the run is in flight.
func (r *Run) Report() *RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID        string    `json:"run_id"`
	Mode      Mode      `json:"mode"`
	Status    RunStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.Progress
	p.Errors = append([]string{}, r.Progress.Errors...)
	return RunSnapshot{
		ID:        r.ID,
		Mode:      r.Mode,
		Status:    r.Status,
		Phase:     r.Phase,
		Progress:  p,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
