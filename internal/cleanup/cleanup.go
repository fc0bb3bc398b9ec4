package cleanup

import (
	"io"
	"log"
	"os"
	"time"

	"ds-clean/internal/config"
	"ds-clean/internal/database"
	"ds-clean/internal/fsops"
	"ds-clean/internal/limiter"
	"ds-clean/internal/logging"
	"ds-clean/internal/metrics"
	"ds-clean/internal/safety"

	"github.com/prometheus/client_golang/prometheus"
)

// CleanupLogger interface for structured logging in cleanup
type CleanupLogger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Metrics interface for walker metrics
type Metrics interface {
	FilesRemovedTotal() prometheus.Counter
	BytesRemovedTotal() prometheus.Counter
	RemoveErrorsTotal() prometheus.Counter
	DirectoriesVisitedTotal() prometheus.Counter
}

// cleanupMetrics wraps global metrics to implement Metrics interface
type cleanupMetrics struct{}

func (m *cleanupMetrics) FilesRemovedTotal() prometheus.Counter {
	return metrics.FilesRemovedTotal
}

func (m *cleanupMetrics) BytesRemovedTotal() prometheus.Counter {
	return metrics.BytesRemovedTotal
}

func (m *cleanupMetrics) RemoveErrorsTotal() prometheus.Counter {
	return metrics.RemoveErrorsTotal
}

func (m *cleanupMetrics) DirectoriesVisitedTotal() prometheus.Counter {
	return metrics.DirectoriesVisitedTotal
}

// Result summarizes one walk
type Result struct {
	Directories  int   // directories opened, root included
	Matches      int   // entries named like the target
	Removed      int   // matches removed
	Failed       int   // matches whose removal failed
	Skipped      int   // matches rejected by the removal guard
	BytesRemoved int64 // size of removed matches
}

// Cleaner walks directory trees and removes target entries
type Cleaner struct {
	logger    CleanupLogger
	metrics   Metrics
	out       io.Writer // verbose "Cleaning directory" lines
	deleter   fsops.Deleter
	open      Opener
	limiter   *limiter.CPULimiter
	db        *database.RemovalDB // Database for recording removal history
	target    string
	maxPath   int
	batchSize int
	protected []string
}

// NewCleaner creates a Cleaner configured from cfg
// Verbose lines go to out, diagnostics go to logger; db may be nil
func NewCleaner(logger *log.Logger, out io.Writer, cfg *config.Config, db *database.RemovalDB) *Cleaner {
	metrics.Init()

	if cfg == nil {
		cfg = config.Default()
	}
	if out == nil {
		out = os.Stdout
	}

	maxPath := cfg.MaxPathLength
	if maxPath <= 0 {
		maxPath = config.DefaultMaxPathLength
	}
	batchSize := cfg.ReadBatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultReadBatchSize
	}

	return &Cleaner{
		logger:    logging.NewLeveled(logger),
		metrics:   &cleanupMetrics{},
		out:       out,
		deleter:   fsops.OSDeleter{},
		open:      openDir,
		db:        db,
		target:    config.TargetName,
		maxPath:   maxPath,
		batchSize: batchSize,
		protected: cfg.ProtectedPaths,
	}
}

// SetDeleter replaces the deleter used for matches
func (c *Cleaner) SetDeleter(d fsops.Deleter) {
	c.deleter = d
}

// SetOpener replaces how directories are opened for listing
func (c *Cleaner) SetOpener(open Opener) {
	c.open = open
}

// SetLimiter throttles the walk each time a directory is opened
func (c *Cleaner) SetLimiter(l *limiter.CPULimiter) {
	c.limiter = l
}

// removeMatch removes one target entry found in dir
// Failures are logged, counted and recorded; they never abort the walk
func (c *Cleaner) removeMatch(v *safety.Validator, root, dir string, entry os.DirEntry, verbose bool, res *Result) {
	path := joinPath(dir, entry.Name())
	res.Matches++

	var size int64
	if info, err := entry.Info(); err == nil {
		size = info.Size()
	}

	if err := v.ValidateRemoveTarget(path); err != nil {
		c.logger.Warn("Skipping match", "path", path, "reason", err)
		res.Skipped++
		c.record(database.ActionSkip, path, root, size, err.Error())
		return
	}

	if verbose {
		io.WriteString(c.out, "Cleaning directory: "+dir+"\n")
	}

	if err := c.deleter.Remove(path); err != nil {
		if os.IsNotExist(err) {
			// Removed by someone else between listing and removal
			c.logger.Info("Match already gone", "path", path)
			return
		}
		c.logger.Error("Failed to remove", "path", path, "error", err)
		c.metrics.RemoveErrorsTotal().Inc()
		res.Failed++
		c.record(database.ActionError, path, root, size, err.Error())
		return
	}

	res.Removed++
	res.BytesRemoved += size
	c.metrics.FilesRemovedTotal().Inc()
	c.metrics.BytesRemovedTotal().Add(float64(size))
	c.record(database.ActionDelete, path, root, size, "")
}

func (c *Cleaner) record(action, path, root string, size int64, errMsg string) {
	if c.db == nil {
		return
	}
	err := c.db.RecordRemoval(database.Removal{
		Timestamp:    time.Now(),
		Action:       action,
		Path:         path,
		Root:         root,
		Size:         size,
		ErrorMessage: errMsg,
	})
	if err != nil {
		// History is best-effort, the walk goes on
		c.logger.Error("Failed to record removal", "path", path, "error", err)
	}
}
