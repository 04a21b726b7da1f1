package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// documentsChecked counts documents by outcome (pass, fail, parse_error).
	documentsChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wirecheck_documents_checked_total",
		Help: "Documents checked by outcome",
	}, []string{"mode", "outcome"})

	// findingsTotal counts findings by code.
	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wirecheck_findings_total",
		Help: "Findings reported by code",
	}, []string{"code"})

	// documentDuration tracks load+extract+check latency per document.
	documentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wirecheck_document_duration_seconds",
		Help:    "Per-document check duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"mode"})

	// issueLogErrors counts failed issues.md writes.
	issueLogErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wirecheck_issue_log_errors_total",
		Help: "Issues log writes that failed",
	})

	// runsTotal counts corpus runs by mode and status.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wirecheck_runs_total",
		Help: "Corpus runs by mode and final status",
	}, []string{"mode", "status"})
)
