package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestRun_StateTransitions(t *testing.T) {
	run := NewRun(ModeAll)
	if run.Status != StatusQueued {
		t.Fatalf("new run status = %q", run.Status)
	}

	transitions := []struct {
		status RunStatus
		phase  string
	}{
		{StatusDiscovering, "discovering"},
		{StatusValidating, "validating"},
		{StatusInspecting, "inspecting"},
		{StatusPublishing, "publishing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := run.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		run.SetStatus(tr.status, tr.phase)

		if run.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, run.Status)
		}
		if run.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, run.Phase)
		}
		if !run.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestRun_Progress(t *testing.T) {
	run := NewRun(ModeValidate)
	run.SetTotalFiles(3)
	run.DocumentChecked(0)
	run.DocumentChecked(4)
	run.AddError("publish: status 503")

	snap := run.Snapshot()
	if snap.Progress.TotalFiles != 3 || snap.Progress.FilesChecked != 2 || snap.Progress.Findings != 4 {
		t.Errorf("progress = %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "publish: status 503" {
		t.Errorf("errors = %v", snap.Progress.Errors)
	}

	// Snapshots must not alias the run's error slice.
	snap.Progress.Errors[0] = "changed"
	if run.Snapshot().Progress.Errors[0] != "publish: status 503" {
		t.Error("snapshot aliases run state")
	}
}

func TestRun_SnapshotErrorsNotNil(t *testing.T) {
	snap := NewRun(ModeInspect).Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestRun_Report(t *testing.T) {
	run := NewRun(ModeValidate)
	if run.Report() != nil {
		t.Fatal("report should be nil while in flight")
	}
	rep := &RunReport{RunID: run.ID, Mode: ModeValidate}
	run.SetReport(rep)
	if run.Report() != rep {
		t.Error("expected attached report")
	}
}

func TestRunStore_PutGet(t *testing.T) {
	store := NewRunStore(time.Hour)
	run := NewRun(ModeAll)
	store.Put(run)

	if got := store.Get(run.ID); got != run {
		t.Fatalf("expected to get run back, got %v", got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing run")
	}
}

func TestRunStore_TTLCleanup(t *testing.T) {
	store := NewRunStore(50 * time.Millisecond)

	old := NewRun(ModeAll)
	store.Put(old)
	time.Sleep(100 * time.Millisecond)
	fresh := NewRun(ModeAll)
	store.Put(fresh)

	store.Cleanup()

	if store.Get(old.ID) != nil {
		t.Error("expected expired run to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh run to survive cleanup")
	}
}

func TestNewRunID(t *testing.T) {
	seen := map[string]bool{}
	prev := ""
	for range 1000 {
		id := NewRunID()
		if len(id) != 26 {
			t.Fatalf("id %q has length %d", id, len(id))
		}
		if strings.Trim(id, crockford) != "" {
			t.Fatalf("id %q has non-Crockford characters", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		if id < prev {
			t.Fatalf("ids not increasing: %q after %q", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestNewULID_TimestampPrefix(t *testing.T) {
	// 2016-07-30T23:54:10.259Z, the reference ULID timestamp.
	ts := time.UnixMilli(1469922850259)
	if got := newULID(ts)[:10]; got != "01ARZ3NDEK" {
		t.Errorf("timestamp prefix = %q, want 01ARZ3NDEK", got)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAll, "all": ModeAll, "validate": ModeValidate, "inspect": ModeInspect} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("lint"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
