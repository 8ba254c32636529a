package monitor

import "context"

// LoadMetrics represents current render load statistics
type LoadMetrics struct {
	// ActiveTasks is the number of renders currently holding a slot
	ActiveTasks int64
	// MaxTasks is the maximum number of concurrent renders allowed
	MaxTasks int64
	// PeakTasks is the highest ActiveTasks value observed
	PeakTasks int64
	// Completed counts released slots
	Completed int64
}

// LoadMonitor bounds how many chart renders run at once and reports
// how busy the render stage was.
type LoadMonitor interface {
	// GetMetrics returns current load statistics
	GetMetrics() LoadMetrics

	// Acquire blocks until a slot is free or ctx is done.
	// The caller MUST call Release() when the task completes.
	Acquire(ctx context.Context) error

	// TryAcquire attempts to acquire a task slot without blocking.
	TryAcquire() bool

	// Release releases a task slot, allowing another task to be acquired
	Release()
}
