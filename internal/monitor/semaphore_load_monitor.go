package monitor

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// SemaphoreLoadMonitor implements LoadMonitor using a weighted semaphore.
type SemaphoreLoadMonitor struct {
	sem       *semaphore.Weighted
	maxWeight int64
	activeCnt atomic.Int64
	peakCnt   atomic.Int64
	doneCnt   atomic.Int64
}

// NewSemaphoreLoadMonitor creates a monitor allowing maxConcurrency slots.
// Values below 1 are raised to 1.
func NewSemaphoreLoadMonitor(maxConcurrency int64) *SemaphoreLoadMonitor {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &SemaphoreLoadMonitor{
		sem:       semaphore.NewWeighted(maxConcurrency),
		maxWeight: maxConcurrency,
	}
}

func (m *SemaphoreLoadMonitor) GetMetrics() LoadMetrics {
	return LoadMetrics{
		ActiveTasks: m.activeCnt.Load(),
		MaxTasks:    m.maxWeight,
		PeakTasks:   m.peakCnt.Load(),
		Completed:   m.doneCnt.Load(),
	}
}

func (m *SemaphoreLoadMonitor) Acquire(ctx context.Context) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	m.track()
	return nil
}

func (m *SemaphoreLoadMonitor) TryAcquire() bool {
	if m.sem.TryAcquire(1) {
		m.track()
		return true
	}
	return false
}

func (m *SemaphoreLoadMonitor) Release() {
	m.activeCnt.Add(-1)
	m.doneCnt.Add(1)
	m.sem.Release(1)
}

func (m *SemaphoreLoadMonitor) track() {
	active := m.activeCnt.Add(1)
	for {
		peak := m.peakCnt.Load()
		if active <= peak || m.peakCnt.CompareAndSwap(peak, active) {
			return
		}
	}
}

var _ LoadMonitor = (*SemaphoreLoadMonitor)(nil)
