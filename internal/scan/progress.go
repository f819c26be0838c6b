package scan

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 100 * time.Millisecond

// ProgressFunc receives the number of processed children and the total.
type ProgressFunc func(done, total int64)

// Progress counts the children processed during one scan.
type Progress struct {
	done  atomic.Int64
	total atomic.Int64
}

// Done returns the number of children aggregated so far.
func (p *Progress) Done() int64 {
	return p.done.Load()
}

// Total returns the number of children being aggregated.
func (p *Progress) Total() int64 {
	return p.total.Load()
}

// startProgressReporter invokes hook(done, total) on each tick until ctx is done
// or the returned stop function is called. stop waits for the reporter to exit.
func startProgressReporter(ctx context.Context, p *Progress, hook ProgressFunc, interval time.Duration) (stop func()) {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	exited := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(exited)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(p.Done(), p.Total())
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-exited
	}
}
