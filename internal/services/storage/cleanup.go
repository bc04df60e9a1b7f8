package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartCacheCleanup runs CleanupCache every interval until ctx is done.
// A non-positive interval disables it.
func (s *StorageService) StartCacheCleanup(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	go runEvery(ctx, interval, s.CleanupCache, func(err error) {
		logger.Warn("Cache cleanup failed", zap.Error(err))
	})
}

func runEvery(ctx context.Context, interval time.Duration, task func(context.Context) error, onErr func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := task(ctx); err != nil {
				onErr(err)
			}
		}
	}
}
