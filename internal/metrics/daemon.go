package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Daemon subsystem metrics
var (
	// ErrorsTotal tracks fatal walk errors and server errors
	ErrorsTotal prometheus.Counter

	// RootFreeSpacePercent tracks free space on the filesystem holding each root
	RootFreeSpacePercent *prometheus.GaugeVec

	// RootsSkippedTotal tracks roots skipped because their mount was unresponsive
	RootsSkippedTotal *prometheus.CounterVec
)

func initDaemonMetrics() {
	ErrorsTotal = NewCounter(
		"dsclean_errors_total",
		"Total number of fatal errors encountered by ds-clean.",
	)

	RootFreeSpacePercent = NewSizeGaugeVec(
		"dsclean_root_free_space_percent",
		"Current free space percentage for the filesystem holding each root.",
		[]string{"root"},
	)

	RootsSkippedTotal = NewCounterVec(
		"dsclean_roots_skipped_total",
		"Total number of root sweeps skipped because the mount was stale.",
		[]string{"root"},
	)
}

func registerDaemonMetrics() {
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(RootFreeSpacePercent)
	prometheus.MustRegister(RootsSkippedTotal)
}

// UpdateFreeSpacePercent updates the free space percentage for a root
func UpdateFreeSpacePercent(root string, percent float64) {
	RootFreeSpacePercent.WithLabelValues(root).Set(percent)
}

// RecordRootSkipped increments the skip counter for a root
func RecordRootSkipped(root string) {
	RootsSkippedTotal.WithLabelValues(root).Inc()
}
