package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/service"

	"github.com/gin-gonic/gin"
)

// Layouts accepted for appointment_date. Values without a zone are UTC.
var appointmentDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

type bookBody struct {
	DoctorName      string `json:"doctor_name"`
	AppointmentDate string `json:"appointment_date"`
}

func parseAppointmentDate(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range appointmentDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (h *Handler) ListDoctors(c *gin.Context) {
	out, err := h.users.ListDoctors(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var body bookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, service.MsgSelectDoctor)
		return
	}
	date, ok := parseAppointmentDate(body.AppointmentDate)
	if !ok {
		badRequest(c, service.MsgSelectDate)
		return
	}
	a, err := h.appointments.Book(c.Request.Context(), mustActor(c), service.BookRequest{
		DoctorName:      body.DoctorName,
		AppointmentDate: date,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, Ok(a))
}

func listAppointmentsRequest(c *gin.Context) service.ListAppointmentsRequest {
	return service.ListAppointmentsRequest{View: c.Query("view"), Status: c.Query("status")}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	out, err := h.appointments.List(c.Request.Context(), mustActor(c), listAppointmentsRequest(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}

func (h *Handler) StreamAppointments(c *gin.Context) {
	actor := mustActor(c)
	req := listAppointmentsRequest(c)
	if _, err := h.appointments.List(c.Request.Context(), actor, req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.stream(c, h.appointments.Topic(actor), func(ctx context.Context) (any, error) {
		return h.appointments.List(ctx, actor, req)
	})
}

func (h *Handler) AppointmentSummary(c *gin.Context) {
	out, err := h.appointments.Summary(c.Request.Context(), mustActor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(out))
}

type statusBody struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, service.MsgInvalidStatus)
		return
	}
	a, err := h.appointments.UpdateStatus(c.Request.Context(), mustActor(c), c.Param("id"), body.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(a))
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if err := h.appointments.Delete(c.Request.Context(), mustActor(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(gin.H{"deleted": c.Param("id")}))
}
