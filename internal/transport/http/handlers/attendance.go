package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
	"github.com/Natsdon/CECOS-Connect/internal/transport/http/middleware"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

const dateLayout = "2006-01-02"

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *usecase.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *usecase.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// RegisterRoutes binds attendance routes behind their permission gates.
func (h *AttendanceHandler) RegisterRoutes(r *gin.RouterGroup, requires PermissionFactory) {
	r.POST("", requires(domain.PermissionTake, domain.ResourceAttendance), h.mark)
	r.GET("/enrollments/:id", requires(domain.PermissionRead, domain.ResourceAttendance), h.list)
}

func (h *AttendanceHandler) mark(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid attendance payload"))
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	record, err := h.attendance.Mark(c.Request.Context(), *actor, usecase.MarkAttendanceInput{
		EnrollmentID: req.EnrollmentID,
		Date:         date,
		Status:       domain.AttendanceStatus(req.Status),
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "enrollment not found"},
		}, http.StatusBadRequest, "failed to mark attendance")
		return
	}

	c.JSON(http.StatusCreated, newAttendanceView(*record))
}

func (h *AttendanceHandler) list(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var from, to time.Time
	if value := c.Query("from"); value != "" {
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid from date"))
			return
		}
		from = parsed
	}
	if value := c.Query("to"); value != "" {
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid to date"))
			return
		}
		to = parsed
	}

	records, err := h.attendance.List(c.Request.Context(), id, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list attendance"))
		return
	}

	views := make([]AttendanceView, 0, len(records))
	for _, record := range records {
		views = append(views, newAttendanceView(record))
	}

	c.JSON(http.StatusOK, views)
}
