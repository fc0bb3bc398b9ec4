package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Walker and sweep metrics
var (
	// FilesRemovedTotal tracks matches removed successfully
	FilesRemovedTotal prometheus.Counter

	// BytesRemovedTotal tracks the size of removed matches
	BytesRemovedTotal prometheus.Counter

	// RemoveErrorsTotal tracks matches whose removal failed (non-fatal)
	RemoveErrorsTotal prometheus.Counter

	// DirectoriesVisitedTotal tracks directories opened by the walker
	DirectoriesVisitedTotal prometheus.Counter

	// SweepDuration tracks how long a sweep over all roots takes
	SweepDuration prometheus.Histogram

	// SweepLastRunTimestamp records Unix timestamp of last sweep
	SweepLastRunTimestamp prometheus.Gauge

	// RootFilesRemovedTotal tracks removals per configured root
	RootFilesRemovedTotal *prometheus.CounterVec
)

func initCleanupMetrics() {
	FilesRemovedTotal = NewCounter(
		"dsclean_files_removed_total",
		"Total number of .DS_Store files removed.",
	)

	BytesRemovedTotal = NewBytesCounter(
		"dsclean_bytes_removed_total",
		"Total bytes of .DS_Store files removed.",
	)

	RemoveErrorsTotal = NewCounter(
		"dsclean_remove_errors_total",
		"Total number of .DS_Store files that could not be removed.",
	)

	DirectoriesVisitedTotal = NewCounter(
		"dsclean_directories_visited_total",
		"Total number of directories opened by the walker.",
	)

	SweepDuration = NewDurationHistogram(
		"dsclean_sweep_duration_seconds",
		"Duration of sweeps over all roots in seconds.",
	)

	SweepLastRunTimestamp = NewSizeGauge(
		"dsclean_sweep_last_run_timestamp",
		"Timestamp of the last sweep (Unix epoch seconds).",
	)

	RootFilesRemovedTotal = NewCounterVec(
		"dsclean_root_files_removed_total",
		"Total number of .DS_Store files removed per root.",
		[]string{"root"},
	)
}

func registerCleanupMetrics() {
	prometheus.MustRegister(FilesRemovedTotal)
	prometheus.MustRegister(BytesRemovedTotal)
	prometheus.MustRegister(RemoveErrorsTotal)
	prometheus.MustRegister(DirectoriesVisitedTotal)
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(SweepLastRunTimestamp)
	prometheus.MustRegister(RootFilesRemovedTotal)
}

// RecordSweepRun updates the last run timestamp to current time
func RecordSweepRun() {
	SweepLastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordRootRemovals adds count removals for a root
func RecordRootRemovals(root string, count int) {
	RootFilesRemovedTotal.WithLabelValues(root).Add(float64(count))
}
