package httpapi

import (
	"context"
	"net/http"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
	"github.com/Emmanjr/health-monitoring/internal/service"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"github.com/gin-gonic/gin"
)

func (h *Handler) bindReading(c *gin.Context) (service.ReadingRequest, bool) {
	var req service.ReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, advisor.InvalidInputMessage)
		return req, false
	}
	return req, true
}

func (h *Handler) AnalyzeVitals(c *gin.Context) {
	req, ok := h.bindReading(c)
	if !ok {
		return
	}
	resp, err := h.vitals.Analyze(c.Request.Context(), mustActor(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(resp))
}

func (h *Handler) SubmitReading(c *gin.Context) {
	req, ok := h.bindReading(c)
	if !ok {
		return
	}
	resp, err := h.vitals.SubmitReading(c.Request.Context(), mustActor(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, Ok(resp))
}

// ListReadings returns the caller's readings, or ?user_id= for doctors and admins.
func (h *Handler) ListReadings(c *gin.Context) {
	out, err := h.vitals.ListReadings(c.Request.Context(), mustActor(c), c.Query("user_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}

func (h *Handler) StreamReadings(c *gin.Context) {
	actor := mustActor(c)
	userID := c.Query("user_id")
	if userID == "" {
		userID = actor.UserID
	}
	// Authorize before subscribing so a denied caller never gets a stream.
	if _, err := h.vitals.ListReadings(c.Request.Context(), actor, userID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.stream(c, subscription.ReadingsTopic(userID), func(ctx context.Context) (any, error) {
		return h.vitals.ListReadings(ctx, actor, userID)
	})
}

func (h *Handler) RecentAlerts(c *gin.Context) {
	out, err := h.vitals.RecentAlerts(c.Request.Context(), mustActor(c), c.Query("user_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}
