package scheduler

import (
	"context"
	"sync"
	"time"

	"iot-edge-controller/pkg/logger"
)

// MaxConcurrentTicks caps how many executions of the same job may overlap.
// A tick that would exceed the cap is coalesced (skipped), never queued.
const MaxConcurrentTicks = 2

// DefaultMisfireGrace is how late a firing may be and still run
const DefaultMisfireGrace = 15 * time.Second

// Runner drives one periodic job. Start and Stop are idempotent; stopping
// halts future ticks immediately while an in-flight tick finishes naturally.
type Runner struct {
	name          string
	interval      time.Duration
	misfireGrace  time.Duration
	job          func(context.Context)
	sem          chan struct{}

	mu          sync.Mutex
	onCoalesced func() // Optional, invoked when a tick is skipped
	running     bool
	cancel      context.CancelFunc
	loopDone    sync.WaitGroup
}

// NewRunner creates a periodic runner for the given job
func NewRunner(name string, interval time.Duration, job func(context.Context)) *Runner {
	return &Runner{
		name:         name,
		interval:     interval,
		misfireGrace: DefaultMisfireGrace,
		job:          job,
		sem:          make(chan struct{}, MaxConcurrentTicks),
	}
}

// SetCoalescedCallback registers a callback invoked when a tick is skipped.
// Safe to call while the runner is started.
func (r *Runner) SetCoalescedCallback(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCoalesced = cb
}

// Start begins periodic execution. Returns false if already started.
func (r *Runner) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		logger.LogInfo("ℹ️ %s scheduler already started. Ignoring.", r.name)
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.running = true

	r.loopDone.Add(1)
	go r.loop(ctx)

	logger.LogInfo("🔄 %s scheduler started (interval: %v)", r.name, r.interval)
	return true
}

// Stop halts future ticks. Returns false if already stopped. No new tick
// starts once Stop has returned; an in-flight tick is not interrupted.
func (r *Runner) Stop() bool {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		logger.LogInfo("ℹ️ %s scheduler already stopped. Ignoring.", r.name)
		return false
	}
	r.running = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	r.loopDone.Wait()

	logger.LogInfo("🛑 %s scheduler stopped", r.name)
	return true
}

// IsRunning reports whether the runner is currently started
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// loop dispatches ticks until the context is cancelled
func (r *Runner) loop(ctx context.Context) {
	defer r.loopDone.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	scheduled := time.Now().Add(r.interval)

	for {
		select {
		case <-ctx.Done():
			logger.LogDebug("🔄 %s scheduler loop exited", r.name)
			return
		case fired := <-ticker.C:
			lateness := fired.Sub(scheduled)
			scheduled = scheduled.Add(r.interval)

			// A firing within the grace window is not a miss; anything
			// later is dropped and the schedule re-anchored
			if lateness > r.misfireGrace {
				logger.LogWarn("⏰ %s tick missed its window by %v - skipping", r.name, lateness)
				scheduled = fired.Add(r.interval)
				continue
			}

			r.dispatch(ctx)
		}
	}
}

// dispatch runs one tick unless the concurrency cap is reached
func (r *Runner) dispatch(ctx context.Context) {
	select {
	case r.sem <- struct{}{}:
		go func() {
			defer func() {
				<-r.sem
				if rec := recover(); rec != nil {
					logger.LogError("❌ %s tick panicked: %v - schedule continues", r.name, rec)
				}
			}()
			r.job(ctx)
		}()
	default:
		// Cap reached: coalesce rather than queue, bounding backlog growth
		logger.LogWarn("⏰ %s tick coalesced: %d executions still running", r.name, MaxConcurrentTicks)
		r.mu.Lock()
		cb := r.onCoalesced
		r.mu.Unlock()
		if cb != nil {
			cb()
		}
	}
}
