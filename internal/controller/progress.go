package controller

import (
	"context"
	"math"
	"time"
)

// Progress stage labels.
const (
	StageWarmingUp   = "Warming up..."
	StageScanning    = "Scanning ingredients..."
	StageNutrients   = "Checking nutrients..."
	StageCalculating = "Calculating score..."
	StagePlating     = "Plating up..."
)

const (
	progressCeiling  = 95.0
	minIncrement     = 0.2
	incrementFactor  = 0.05
	DefaultTickEvery = 150 * time.Millisecond
)

// Progress is a simulated, monotonically increasing indicator shown while
// busy. It does not reflect real work.
type Progress struct {
	Percent float64
	Stage   string
}

// NextProgress applies one tick: p + max(0.2, (95-p)*0.05), capped at 95.
func NextProgress(p float64) float64 {
	inc := math.Max(minIncrement, (progressCeiling-p)*incrementFactor)
	return math.Min(p+inc, progressCeiling)
}

// StageFor returns the label for a percentage.
func StageFor(p float64) string {
	switch {
	case p < 30:
		return StageScanning
	case p < 55:
		return StageNutrients
	case p < 80:
		return StageCalculating
	default:
		return StagePlating
	}
}

// TickerFunc creates a tick channel and its stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// RealTicker is the TickerFunc backed by time.Ticker.
func RealTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// startProgressLocked resets progress and launches the ticker goroutine.
// Must be called with c.mu held.
func (c *Controller) startProgressLocked() {
	c.stopProgressLocked()

	c.progressGen++
	c.progress = Progress{Percent: 0, Stage: StageWarmingUp}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelProgress = cancel
	go c.runProgress(ctx, c.progressGen)
}

// stopProgressLocked cancels the running ticker, if any. Must be called
// with c.mu held.
func (c *Controller) stopProgressLocked() {
	if c.cancelProgress != nil {
		c.cancelProgress()
		c.cancelProgress = nil
	}
}

func (c *Controller) runProgress(ctx context.Context, gen uint64) {
	ticks, stop := c.ticker(c.tickEvery)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
		}

		c.mu.Lock()
		if gen != c.progressGen || !c.busyLocked() || ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		next := NextProgress(c.progress.Percent)
		c.progress = Progress{Percent: next, Stage: StageFor(next)}
		c.version++
		snap := c.snapshotLocked()
		observers := c.observersLocked()
		c.mu.Unlock()

		notify(observers, snap)
	}
}
