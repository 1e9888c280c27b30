package report

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/justyntemme/tome-t/internal/logging"
)

// DefaultTimeout bounds a single notification request
const DefaultTimeout = 10 * time.Second

// Tracker is the server side of access and progress notifications.
// *api.Client satisfies it.
type Tracker interface {
	Access(ctx context.Context, path string) error
	Progress(ctx context.Context, path, position string, progress float64) error
}

// Reporter sends access and progress notifications without blocking the
// caller. Failures are logged and dropped: there is no retry and no queue.
type Reporter struct {
	tracker Tracker
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates a reporter over tracker. A non-positive timeout uses DefaultTimeout.
func New(tracker Tracker, timeout time.Duration, logger *slog.Logger) *Reporter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Reporter{
		tracker: tracker,
		logger:  logging.OrDiscard(logger),
		timeout: timeout,
	}
}

// Access reports that the book at path was opened
func (r *Reporter) Access(path string) {
	if path == "" {
		return
	}
	r.send(func(ctx context.Context) error {
		return r.tracker.Access(ctx, path)
	}, "access", "path", path)
}

// Progress reports a committed reading position
func (r *Reporter) Progress(path, position string, fraction float64) {
	if path == "" {
		return
	}
	r.send(func(ctx context.Context) error {
		return r.tracker.Progress(ctx, path, position, fraction)
	}, "progress", "path", path, "position", position, "progress", fraction)
}

// Wait blocks until all in-flight notifications finish. Used on shutdown so
// the last page turn is not lost when the program exits.
func (r *Reporter) Wait() {
	r.wg.Wait()
}

func (r *Reporter) send(call func(ctx context.Context) error, kind string, attrs ...any) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := call(ctx); err != nil {
			r.logger.Warn("failed to report "+kind, append(attrs, "err", err)...)
			return
		}
		r.logger.Debug("reported "+kind, attrs...)
	}()
}

// Nop discards every notification. Local files are read through it.
type Nop struct{}

func (Nop) Access(string)                    {}
func (Nop) Progress(string, string, float64) {}
