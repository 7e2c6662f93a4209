package alarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/store"

	"go.uber.org/zap"
)

// maxCachedAlerts bounds the per-user alert list.
const maxCachedAlerts = 20

// CacheManager keeps each user's recent alerts under prefix+userID+suffix.
type CacheManager struct {
	kv     store.KV
	prefix string
	suffix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheManager creates a cache manager. A zero ttl keeps entries forever.
func NewCacheManager(kv store.KV, prefix, suffix string, ttl time.Duration, logger *zap.Logger) *CacheManager {
	return &CacheManager{kv: kv, prefix: prefix, suffix: suffix, ttl: ttl, logger: logger}
}

func (c *CacheManager) key(userID string) string {
	return c.prefix + userID + c.suffix
}

// GetActiveAlerts returns the cached alerts for userID, newest first.
// A missing key yields an empty list.
func (c *CacheManager) GetActiveAlerts(ctx context.Context, userID string) ([]*domain.AlertEvent, error) {
	val, err := c.kv.Get(ctx, c.key(userID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return []*domain.AlertEvent{}, nil
		}
		return nil, fmt.Errorf("get alert cache: %w", err)
	}

	var alerts []*domain.AlertEvent
	if err := json.Unmarshal([]byte(val), &alerts); err != nil {
		return nil, fmt.Errorf("unmarshal alert cache: %w", err)
	}
	return alerts, nil
}

// ClearAlerts drops the cached list for userID.
func (c *CacheManager) ClearAlerts(ctx context.Context, userID string) error {
	if err := c.kv.Del(ctx, c.key(userID)); err != nil {
		return fmt.Errorf("clear alert cache: %w", err)
	}
	return nil
}

// AddAlert merges event into the user's cached list. An event already
// present (same event id or reading id) is replaced, not duplicated.
func (c *CacheManager) AddAlert(ctx context.Context, event *domain.AlertEvent) error {
	alerts, err := c.GetActiveAlerts(ctx, event.UserID)
	if err != nil {
		c.logger.Warn("Dropping unreadable alert cache",
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
		alerts = nil
	}

	merged := make([]*domain.AlertEvent, 0, len(alerts)+1)
	merged = append(merged, event)
	for _, a := range alerts {
		if a.EventID == event.EventID || a.ReadingID == event.ReadingID {
			continue
		}
		merged = append(merged, a)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TriggeredAt.After(merged[j].TriggeredAt)
	})
	if len(merged) > maxCachedAlerts {
		merged = merged[:maxCachedAlerts]
	}

	b, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal alert cache: %w", err)
	}
	if err := c.kv.Set(ctx, c.key(event.UserID), string(b), c.ttl); err != nil {
		return fmt.Errorf("set alert cache: %w", err)
	}

	c.logger.Debug("Updated alert cache",
		zap.String("user_id", event.UserID),
		zap.Int("count", len(merged)),
	)
	return nil
}
