package limiter

import (
	"testing"
	"time"
)

func TestThrottleDisabled(t *testing.T) {
	for _, pct := range []float64{0, 100, 150} {
		l := NewCPULimiter(pct)
		l.lastPause = time.Now().Add(-time.Second)
		l.sleep = func(d time.Duration) {
			t.Errorf("max_cpu_percent=%v should never sleep, slept %v", pct, d)
		}
		l.Throttle()
	}

	var nilLimiter *CPULimiter
	nilLimiter.Throttle()
}

func TestThrottleProportionalPause(t *testing.T) {
	l := NewCPULimiter(50)
	l.lastPause = time.Now().Add(-100 * time.Millisecond)

	var slept time.Duration
	l.sleep = func(d time.Duration) { slept = d }
	l.Throttle()

	// 50% duty cycle: pause roughly equals the work done
	if slept < 100*time.Millisecond || slept > 200*time.Millisecond {
		t.Errorf("Expected ~100ms pause, got %v", slept)
	}
}

func TestThrottleCapsPause(t *testing.T) {
	l := NewCPULimiter(1)
	l.lastPause = time.Now().Add(-time.Second)

	var slept time.Duration
	l.sleep = func(d time.Duration) { slept = d }
	l.Throttle()

	if slept != maxPause {
		t.Errorf("Expected pause capped at %v, got %v", maxPause, slept)
	}
}

func TestThrottleSkipsShortWork(t *testing.T) {
	l := NewCPULimiter(10)
	l.sleep = func(d time.Duration) {
		t.Errorf("Should not pause before %v of work, slept %v", minWorkSlice, d)
	}
	l.lastPause = time.Now()
	l.Throttle()
}

func TestSetMaxPercent(t *testing.T) {
	l := NewCPULimiter(0)
	l.SetMaxPercent(50)
	l.lastPause = time.Now().Add(-50 * time.Millisecond)

	called := false
	l.sleep = func(time.Duration) { called = true }
	l.Throttle()
	if !called {
		t.Error("Expected limiter to pause after SetMaxPercent")
	}
}
