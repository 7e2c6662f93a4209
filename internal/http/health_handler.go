package httpapi

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReadinessCheck is one dependency probed by /ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type probeResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Checks     map[string]string `json:"checks,omitempty"`
	RoutineNum int               `json:"routine_num"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, probeResponse{Success: true, Message: "main thread alive", RoutineNum: runtime.NumGoroutine()})
}

func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := probeResponse{Success: true, Message: "ready", Checks: map[string]string{}, RoutineNum: runtime.NumGoroutine()}
	for _, chk := range h.checks {
		if err := chk.Check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("check", chk.Name), zap.Error(err))
			resp.Success = false
			resp.Message = "not ready"
			resp.Checks[chk.Name] = err.Error()
			continue
		}
		resp.Checks[chk.Name] = "ok"
	}
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
