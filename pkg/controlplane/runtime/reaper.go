package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/marmos91/smbmanager/internal/logger"
)

// DefaultReapInterval is how often expired edit sessions are swept.
const DefaultReapInterval = 30 * time.Second

// SessionReaper periodically discards expired edit sessions so abandoned
// edits do not pin a section forever. Lookups also expire sessions lazily;
// the reaper keeps the open-session gauge honest between requests.
type SessionReaper struct {
	rt       *Runtime
	interval time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	stopped   chan struct{} // closed when the sweep goroutine exits
}

// NewSessionReaper creates a reaper for rt. If interval is 0,
// DefaultReapInterval is used.
func NewSessionReaper(rt *Runtime, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &SessionReaper{
		rt:       rt,
		interval: interval,
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins the background sweep. The goroutine runs until Stop is
// called or ctx is cancelled.
func (w *SessionReaper) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		go func() {
			defer close(w.stopped)

			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()

			logger.Debug("Session reaper started", "interval", w.interval)

			for {
				select {
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				case <-ticker.C:
					w.Sweep()
				}
			}
		}()
	})
}

// Sweep discards expired sessions once and returns how many were removed.
func (w *SessionReaper) Sweep() int {
	n := w.rt.sessions.expire()
	if n > 0 {
		logger.Info("Expired edit sessions discarded", logger.Count(n))
	}
	w.rt.reportSessions()
	return n
}

// Stop signals the sweep goroutine to stop and waits for it to exit.
// Stop on a reaper that was never started returns immediately.
func (w *SessionReaper) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })

	started := true
	w.startOnce.Do(func() { started = false })
	if started {
		<-w.stopped
	}
}
