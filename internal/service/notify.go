package service

import (
	"context"

	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"go.uber.org/zap"
)

// notify tells subscribers that topics changed. The write already succeeded,
// so a failure is only logged.
func notify(ctx context.Context, n subscription.Notifier, logger *zap.Logger, topics ...string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, topics...); err != nil {
		logger.Warn("Failed to notify subscribers",
			zap.Strings("topics", topics),
			zap.Error(err),
		)
	}
}
