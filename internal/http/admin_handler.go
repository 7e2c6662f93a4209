package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Emmanjr/health-monitoring/internal/service"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	out, err := h.users.ListUsers(c.Request.Context(), mustActor(c), service.ListUsersRequest{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}

func (h *Handler) UserStats(c *gin.Context) {
	out, err := h.users.UserStats(c.Request.Context(), mustActor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}

// StreamUsers pushes the first page of the admin user list, with the same
// filters as ListUsers, after every account change.
func (h *Handler) StreamUsers(c *gin.Context) {
	actor := mustActor(c)
	size, _ := strconv.Atoi(c.Query("size"))
	req := service.ListUsersRequest{Search: c.Query("search"), Role: c.Query("role"), Page: 1, Size: size}
	if _, err := h.users.ListUsers(c.Request.Context(), actor, req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.stream(c, subscription.TopicUsers, func(ctx context.Context) (any, error) {
		return h.users.ListUsers(ctx, actor, req)
	})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), mustActor(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(gin.H{"deleted": c.Param("id")}))
}

func (h *Handler) ListPatients(c *gin.Context) {
	out, err := h.users.ListPatients(c.Request.Context(), mustActor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}

func (h *Handler) PatientDetail(c *gin.Context) {
	out, err := h.dashboard.PatientDetail(c.Request.Context(), mustActor(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}

func (h *Handler) ExportPatient(c *gin.Context) {
	file, err := h.dashboard.ExportPatientRecords(c.Request.Context(), mustActor(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
