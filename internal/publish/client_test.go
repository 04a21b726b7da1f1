package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "secret", nil)
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestPutReport_SendsJSONWithAuth(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).PutReport(context.Background(), "01JRUN", map[string]int{"total_files": 3})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/reports/01JRUN" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody["total_files"] != float64(3) {
		t.Errorf("body = %v", gotBody)
	}
}

func TestPutReport_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).PutReport(context.Background(), "run", struct{}{}); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestPutReport_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).PutReport(context.Background(), "run", struct{}{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRetryable(err) {
		t.Errorf("final error should wrap the retryable cause: %v", err)
	}
	if n := calls.Load(); n != MaxRetries+1 {
		t.Errorf("calls = %d, want %d", n, MaxRetries+1)
	}
}

func TestPutReport_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad report", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).PutReport(context.Background(), "run", struct{}{})
	if err == nil || IsRetryable(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestGetReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reports/known" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"run_id":"known","received_at":"2026-03-01T10:00:00Z","report":{"mode":"all"}}`))
	}))
	defer srv.Close()
	c := newTestClient(srv.URL)

	got, err := c.GetReport(context.Background(), "known")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.RunID != "known" || string(got.Report) != `{"mode":"all"}` {
		t.Errorf("report = %+v", got)
	}

	missing, err := c.GetReport(context.Background(), "missing")
	if err != nil || missing != nil {
		t.Errorf("missing report = %+v, %v", missing, err)
	}
}

func TestRetryableError(t *testing.T) {
	cause := errors.New("boom")
	err := &RetryableError{StatusCode: 502, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("RetryableError should unwrap to its cause")
	}
	if IsRetryable(cause) {
		t.Error("plain errors are not retryable")
	}
	for attempt := range 8 {
		if d := Backoff(attempt); d < time.Second || d > 45*time.Second {
			t.Errorf("Backoff(%d) = %v out of range", attempt, d)
		}
	}
}
