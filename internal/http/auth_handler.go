package httpapi

import (
	"context"
	"net/http"

	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, service.MsgRequiredFields)
		return
	}
	resp, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, Ok(resp))
}

func (h *Handler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, service.MsgRequiredFields)
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(resp))
}

func (h *Handler) GetMe(c *gin.Context) {
	u, err := h.users.GetProfile(c.Request.Context(), mustActor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(u))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	h.saveProfile(c, h.users.UpdateProfile)
}

func (h *Handler) CompleteOnboarding(c *gin.Context) {
	h.saveProfile(c, h.users.CompleteOnboarding)
}

func (h *Handler) saveProfile(c *gin.Context, save func(context.Context, service.Actor, service.ProfileRequest) (*domain.User, error)) {
	var req service.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid profile payload.")
		return
	}
	u, err := save(c.Request.Context(), mustActor(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(u))
}
