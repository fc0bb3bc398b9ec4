package disk

import (
	"errors"
	"os"
	"syscall"
	"time"
)

// FreePercent returns the percentage of free space on the filesystem holding path
func FreePercent(path string) (float64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}

	total := float64(stat.Blocks) * float64(stat.Bsize)
	if total <= 0 {
		return 0, nil
	}
	free := float64(stat.Bavail) * float64(stat.Bsize)
	return free / total * 100.0, nil
}

// IsStale reports whether path sits on an unresponsive mount: the stat does not return
// within timeout, or fails with an error typical of a dead network filesystem
func IsStale(path string, timeout time.Duration) bool {
	done := make(chan error, 1)
	go func() {
		_, err := os.Stat(path)
		done <- err
	}()

	select {
	case err := <-done:
		return errors.Is(err, syscall.ESTALE) ||
			errors.Is(err, syscall.EIO) ||
			errors.Is(err, syscall.ENXIO) ||
			os.IsTimeout(err)
	case <-time.After(timeout):
		return true
	}
}
