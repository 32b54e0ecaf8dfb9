// Package resource tracks and limits the memory claimed by window mappings.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MappedMemoryLimitBytes is the hard limit for mapped window memory.
	// If 0, no hard limit is enforced (only tracking).
	MappedMemoryLimitBytes int64

	// MapLimitBytesPerSec throttles how many bytes may be newly mapped per
	// second, smoothing window churn on cold files. If 0, unlimited.
	MapLimitBytesPerSec int64
}

// Controller tracks mapped-memory usage against the configured limits.
// It is safe for concurrent use.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	mapLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MappedMemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MappedMemoryLimitBytes)
	}

	if cfg.MapLimitBytesPerSec > 0 {
		c.mapLimiter = rate.NewLimiter(rate.Limit(cfg.MapLimitBytesPerSec), int(cfg.MapLimitBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory for a new mapping. If a hard
// limit is configured and usage would exceed it, this blocks until memory is
// available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil {
		return true
	}
	if bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory after an unmap.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently mapped memory in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireMap waits until the map-throughput limit allows mapping the
// specified number of bytes.
func (c *Controller) AcquireMap(ctx context.Context, bytes int) error {
	if c == nil || c.mapLimiter == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}
	if burst := c.mapLimiter.Burst(); bytes > burst {
		bytes = burst
	}
	return c.mapLimiter.WaitN(ctx, bytes)
}
