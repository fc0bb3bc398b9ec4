package metrics

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce       sync.Once
	serverMutex    sync.Mutex
	currentSrv     *http.Server
	triggerMutex   sync.RWMutex
	triggerChannel chan os.Signal

	// healthy reflects the outcome of the most recent sweep
	healthy atomic.Bool
)

// Init initializes all metrics subsystems and registers them with Prometheus
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initCleanupMetrics()
		initDaemonMetrics()

		registerCleanupMetrics()
		registerDaemonMetrics()

		// Appear in /metrics before the first sweep
		SweepLastRunTimestamp.Set(0)
		healthy.Store(true)
	})
}

// SetTriggerChannel sets the channel /trigger sends SIGUSR1 on
func SetTriggerChannel(ch chan os.Signal) {
	triggerMutex.Lock()
	defer triggerMutex.Unlock()
	triggerChannel = ch
}

// SetHealthy records whether the last sweep completed without fatal errors
func SetHealthy(ok bool) {
	healthy.Store(ok)
}

// IsHealthy reports the outcome of the last sweep
func IsHealthy() bool {
	return healthy.Load()
}

// Handler returns the mux serving /metrics, /health and /trigger
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if IsHealthy() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok","healthy":true}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded","healthy":false}`))
	})

	mux.HandleFunc("/trigger", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		triggerMutex.RLock()
		ch := triggerChannel
		triggerMutex.RUnlock()

		if ch == nil {
			http.Error(w, "Trigger channel not initialized", http.StatusServiceUnavailable)
			return
		}

		// Send USR1 the same way the signal handler would
		select {
		case ch <- syscall.SIGUSR1:
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Sweep triggered"))
		default:
			http.Error(w, "Trigger channel full", http.StatusServiceUnavailable)
		}
	})

	return mux
}

// StartServer starts the metrics HTTP server on the specified address
func StartServer(addr string, logger *log.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv != nil {
		logger.Printf("metrics server already running on %s", currentSrv.Addr)
		return
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	currentSrv = srv

	go func() {
		logger.Printf("metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server error: %v", err)
			ErrorsTotal.Inc()
		}
	}()
}

// Shutdown gracefully shuts down the metrics server
func Shutdown(ctx context.Context, logger *log.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv == nil {
		return
	}

	if err := currentSrv.Shutdown(ctx); err != nil {
		logger.Printf("metrics server shutdown error: %v", err)
		ErrorsTotal.Inc()
	}
	currentSrv = nil
}
