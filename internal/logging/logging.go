package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ds-clean/internal/config"
)

const logFlags = log.LstdFlags | log.Lmicroseconds

// New creates a logger that writes to console and, when cfg.Dir is set,
// to a rotated log file inside that directory
func New(cfg config.LoggingCfg, console io.Writer) *log.Logger {
	if console == nil {
		console = os.Stderr
	}
	if cfg.Dir == "" {
		return log.New(console, "", logFlags)
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		log.Printf("failed to ensure log directory %s: %v", cfg.Dir, err)
		return log.New(console, "", logFlags)
	}

	name := cfg.File
	if name == "" {
		name = config.DefaultLogFile
	}
	filePath := filepath.Join(cfg.Dir, name)

	rotateDays := config.DefaultRotationDays
	if cfg.RotationDays > 0 {
		rotateDays = cfg.RotationDays
	}
	rotateLogsIfNeeded(filePath, rotateDays)

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("failed to open log file %s: %v", filePath, err)
		return log.New(console, "", logFlags)
	}

	return log.New(io.MultiWriter(console, f), "", logFlags)
}

// rotateLogsIfNeeded rotates log files older than the specified days
func rotateLogsIfNeeded(logPath string, rotationDays int) {
	info, err := os.Stat(logPath)
	if err != nil {
		// Log file doesn't exist yet, nothing to rotate
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)
	if info.ModTime().Before(cutoffTime) {
		timestamp := info.ModTime().Format("20060102-150405")
		rotatedPath := logPath + "." + timestamp

		if err := os.Rename(logPath, rotatedPath); err != nil {
			log.Printf("failed to rotate log file: %v", err)
			return
		}

		cleanupOldLogs(logPath, rotationDays)
	}
}

// cleanupOldLogs removes rotated log files older than rotation days
func cleanupOldLogs(logPath string, rotationDays int) {
	logDir := filepath.Dir(logPath)
	prefix := filepath.Base(logPath) + "."

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			fullPath := filepath.Join(logDir, entry.Name())
			if err := os.Remove(fullPath); err != nil {
				log.Printf("failed to remove old log file %s: %v", fullPath, err)
			}
		}
	}
}

// Leveled wraps a standard log.Logger with level-tagged key/value output
type Leveled struct {
	*log.Logger
}

// NewLeveled returns a Leveled logger, falling back to log.Default()
func NewLeveled(logger *log.Logger) *Leveled {
	if logger == nil {
		logger = log.Default()
	}
	return &Leveled{Logger: logger}
}

func (l *Leveled) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *Leveled) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *Leveled) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *Leveled) logWithLevel(level, msg string, args ...interface{}) {
	parts := make([]interface{}, 0, len(args)+2)
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}
