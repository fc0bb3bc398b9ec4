package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"ds-clean/internal/cleanup"
	"ds-clean/internal/config"
	"ds-clean/internal/database"
	"ds-clean/internal/disk"
	"ds-clean/internal/limiter"
	"ds-clean/internal/metrics"
)

// RunOnce sweeps every configured root once.
// A fatal walk error stops only that root; the returned error joins all per-root failures.
func RunOnce(ctx context.Context, cfg *config.Config, logger *log.Logger, db *database.RemovalDB) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()

	cleaner := cleanup.NewCleaner(logger, logger.Writer(), cfg, db)
	cleaner.SetLimiter(limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent))

	var failures []error
	var total cleanup.Result
	for _, root := range cfg.Roots {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		if disk.IsStale(root, cfg.NFSTimeoutDuration()) {
			logger.Printf("skipping %s: mount not responding", root)
			metrics.RecordRootSkipped(root)
			continue
		}

		if free, err := disk.FreePercent(root); err != nil {
			logger.Printf("failed to read free space for %s: %v", root, err)
		} else {
			metrics.UpdateFreeSpacePercent(root, free)
		}

		res, err := cleaner.Clean(root, cfg.Verbose)
		metrics.RecordRootRemovals(root, res.Removed)
		total.Directories += res.Directories
		total.Removed += res.Removed
		total.Failed += res.Failed
		total.Skipped += res.Skipped
		total.BytesRemoved += res.BytesRemoved

		if err != nil {
			logger.Printf("sweep of %s aborted: %v", root, err)
			metrics.ErrorsTotal.Inc()
			failures = append(failures, fmt.Errorf("root %s: %w", root, err))
			continue
		}
		logger.Printf("swept %s: directories=%d removed=%d failed=%d skipped=%d", root, res.Directories, res.Removed, res.Failed, res.Skipped)
	}

	elapsed := time.Since(start).Seconds()
	metrics.SweepDuration.Observe(elapsed)
	metrics.RecordSweepRun()
	metrics.SetHealthy(len(failures) == 0)

	logger.Printf("sweep complete: roots=%d directories=%d removed=%d freed=%d bytes duration=%.3fs",
		len(cfg.Roots), total.Directories, total.Removed, total.BytesRemoved, elapsed)
	return errors.Join(failures...)
}

// Run sweeps immediately, then on every interval tick and every trigger signal until ctx is done
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger, db *database.RemovalDB, trigger <-chan os.Signal) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	if err := RunOnce(ctx, cfg, logger, db); err != nil {
		logger.Printf("error running sweep: %v", err)
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
		case sig := <-trigger:
			logger.Printf("sweep triggered by %v", sig)
		}
		if err := RunOnce(ctx, cfg, logger, db); err != nil {
			logger.Printf("error running sweep: %v", err)
		}
	}
}
