package limiter

import (
	"runtime"
	"time"
)

const (
	// minWorkSlice is the least amount of work between two pauses
	minWorkSlice = 10 * time.Millisecond
	// maxPause caps a single pause so a long stretch of work never stalls the walk
	maxPause = 500 * time.Millisecond
)

// CPULimiter keeps a walk near a CPU duty cycle by pausing between directories
type CPULimiter struct {
	maxPercent float64
	lastPause  time.Time
	sleep      func(time.Duration)
}

// NewCPULimiter creates a limiter for maxPercent; 0 or >= 100 disables it
func NewCPULimiter(maxPercent float64) *CPULimiter {
	return &CPULimiter{
		maxPercent: maxPercent,
		lastPause:  time.Now(),
		sleep:      time.Sleep,
	}
}

// Throttle pauses in proportion to the work done since the previous pause.
// At maxPercent=25, 30ms of work earns a 90ms pause.
func (l *CPULimiter) Throttle() {
	if l == nil || l.maxPercent <= 0 || l.maxPercent >= 100 {
		return
	}

	worked := time.Since(l.lastPause)
	if worked < minWorkSlice {
		runtime.Gosched()
		return
	}

	pause := time.Duration(float64(worked) * (100.0 - l.maxPercent) / l.maxPercent)
	if pause > maxPause {
		pause = maxPause
	}
	l.sleep(pause)
	l.lastPause = time.Now()
}

// SetMaxPercent updates the maximum CPU percentage
func (l *CPULimiter) SetMaxPercent(maxPercent float64) {
	l.maxPercent = maxPercent
}
