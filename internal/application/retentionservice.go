package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/clipkeeper/internal/domain/port/driven"
)

// DefaultRetentionInterval is how often age-based cleanup runs when no interval is configured.
const DefaultRetentionInterval = 24 * time.Hour

// RetentionService periodically removes unpinned clips older than a fixed
// number of days.
type RetentionService struct {
	clipStore driven.ClipStore
	days      int
	interval  time.Duration
}

// NewRetentionService creates a RetentionService. A days value <= 0 disables cleanup.
func NewRetentionService(clipStore driven.ClipStore, days int, interval time.Duration) *RetentionService {
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	return &RetentionService{
		clipStore: clipStore,
		days:      days,
		interval:  interval,
	}
}

// Enabled reports whether the service will delete anything.
func (s *RetentionService) Enabled() bool {
	return s.days > 0
}

// Start runs a cleanup immediately and then on every interval in its own
// goroutine until ctx is canceled. The returned channel is closed once the
// loop has exited and no cleanup is in flight; it is closed at once when
// retention is disabled.
func (s *RetentionService) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	if !s.Enabled() {
		slog.Info("retention disabled")
		close(done)
		return done
	}

	go func() {
		defer close(done)
		s.run(ctx)
	}()

	return done
}

func (s *RetentionService) run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention service stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass and returns the number of removed clips.
func (s *RetentionService) RunOnce(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	return s.clipStore.CleanupOlderThan(ctx, s.days)
}

func (s *RetentionService) runOnce(ctx context.Context) {
	start := time.Now()

	n, err := s.RunOnce(ctx)
	if err != nil {
		slog.Error("retention cleanup failed", "days", s.days, "error", err)
		return
	}

	slog.Info("retention cleanup complete",
		"days", s.days,
		"deleted", n,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}
