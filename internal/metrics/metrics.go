// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scan metrics
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adrkit_scans_total",
		Help: "Completed directory scans by outcome",
	}, []string{"outcome"}) // outcome=ok|degraded|failed

	scanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adrkit_scan_duration_seconds",
		Help:    "Time spent scanning the docs directory end to end",
		Buckets: prometheus.DefBuckets,
	})

	scanFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adrkit_scan_failures_total",
		Help: "Scan failures by stage",
	}, []string{"stage"}) // stage=walk|parse|index|artifacts

	documentsParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adrkit_documents_parsed_total",
		Help: "Documents parsed during scans by outcome",
	}, []string{"outcome"}) // outcome=ok|error

	lintFindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adrkit_lint_findings_total",
		Help: "Lint findings discovered during scans",
	}, []string{"rule", "severity"})

	// Index metrics, snapshots of the last completed scan
	recordsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "adrkit_records_total",
		Help: "Indexed decision records by status (last scan)",
	}, []string{"status"})

	indexRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "adrkit_index_records",
		Help: "Decision records currently in the index",
	})

	// Operational metrics
	configValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adrkit_config_validation_errors_total",
		Help: "Total number of configuration validation errors",
	})

	watchEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adrkit_watch_events_total",
		Help: "Filesystem events observed in the docs directory",
	})
)

func IncScan(outcome string)              { scansTotal.WithLabelValues(outcome).Inc() }
func ObserveScanDuration(seconds float64) { scanDurationSeconds.Observe(seconds) }
func IncScanFailure(stage string)         { scanFailuresTotal.WithLabelValues(stage).Inc() }

func IncDocumentParsed(outcome string) { documentsParsedTotal.WithLabelValues(outcome).Inc() }

func IncLintFinding(rule, severity string) {
	lintFindingsTotal.WithLabelValues(rule, severity).Inc()
}

// RecordStatusCounts replaces the per-status record gauges with the counts
// from the latest scan and updates the index total.
func RecordStatusCounts(counts map[string]int) {
	recordsByStatus.Reset()
	total := 0
	for status, n := range counts {
		recordsByStatus.WithLabelValues(status).Set(float64(n))
		total += n
	}
	indexRecords.Set(float64(total))
}

func IncConfigValidationError() { configValidationErrors.Inc() }
func IncWatchEvent()            { watchEventsTotal.Inc() }
