package httpapi

import (
	"io"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stream serves topic as Server-Sent Events. Every "snapshot" event carries
// the complete current set; clients replace their view with it. A client
// that reconnects gets the full set again as its first event.
func (h *Handler) stream(c *gin.Context, topic string, loader subscription.Loader) {
	ctx := c.Request.Context()
	ch, err := h.hub.Subscribe(ctx, topic, loader)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.metrics.Subscribers.Inc()
	defer h.metrics.Subscribers.Dec()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	h.logger.Debug("Stream opened", zap.String("topic", topic))
	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
	h.logger.Debug("Stream closed", zap.String("topic", topic))
}
