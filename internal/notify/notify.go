// Package notify provides notification sink implementations. Notifications
// are fire-and-forget: failures are logged, never returned.
package notify

import (
	"context"
	"sync"

	"fintrack/internal/backend"
	"fintrack/internal/log"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithComponent(log.ComponentNotify)}
}

func (n *LogNotifier) Info(ctx context.Context, msg string) {
	n.logger.InfoContext(ctx, msg)
}

func (n *LogNotifier) Warn(ctx context.Context, msg string) {
	n.logger.WarnContext(ctx, msg)
}

// Fanout delivers each notification to every sink in order.
type Fanout []backend.Notifier

func (f Fanout) Info(ctx context.Context, msg string) {
	for _, n := range f {
		n.Info(ctx, msg)
	}
}

func (f Fanout) Warn(ctx context.Context, msg string) {
	for _, n := range f {
		n.Warn(ctx, msg)
	}
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(_ context.Context, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, msg)
}

func (r *Recorder) Warn(_ context.Context, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

func (r *Recorder) Infos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.infos...)
}

func (r *Recorder) Warns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warns...)
}

// Reset clears captured notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = nil
	r.warns = nil
}

var (
	_ backend.Notifier = (*LogNotifier)(nil)
	_ backend.Notifier = (Fanout)(nil)
	_ backend.Notifier = (*Recorder)(nil)
)
