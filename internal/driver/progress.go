package driver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"optdrive/internal/logging"
)

// Reporter emits periodic progress heartbeats onto the protocol stream while
// a long-running operation executes.
type Reporter struct {
	emitter  *Emitter
	logger   *slog.Logger
	interval time.Duration

	mu       sync.Mutex
	progress int
	message  string
}

// NewReporter creates a reporter. A non-positive interval disables emission.
func NewReporter(emitter *Emitter, logger *slog.Logger, interval time.Duration) *Reporter {
	return &Reporter{
		emitter:  emitter,
		logger:   logging.NewComponentLogger(logger, "progress"),
		interval: interval,
	}
}

// Set updates the progress percentage and message reported by the next
// heartbeat.
func (r *Reporter) Set(progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = progress
	r.message = message
}

// Run emits heartbeats until the context is cancelled. Call from its own
// goroutine; wg is released on return.
func (r *Reporter) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			heartbeat := Progress{Progress: r.progress, Message: r.message}
			r.mu.Unlock()
			if err := r.emitter.Emit(heartbeat); err != nil {
				r.logger.Warn("progress emission failed", logging.Error(err))
			}
		}
	}
}
