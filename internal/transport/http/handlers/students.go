package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

// StudentHandler exposes student record endpoints.
type StudentHandler struct {
	students *usecase.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *usecase.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// RegisterRoutes binds student record routes behind their permission gates.
func (h *StudentHandler) RegisterRoutes(r *gin.RouterGroup, requires PermissionFactory) {
	r.POST("", requires(domain.PermissionCreate, domain.ResourceStudents), h.create)
	r.GET("", requires(domain.PermissionRead, domain.ResourceStudents), h.list)
	r.GET("/:id", requires(domain.PermissionRead, domain.ResourceStudents), h.get)
	r.PUT("/:id", requires(domain.PermissionUpdate, domain.ResourceStudents), h.update)
	r.PATCH("/:id/active", requires(domain.PermissionUpdate, domain.ResourceStudents), h.setActive)
}

func (h *StudentHandler) create(c *gin.Context) {
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid student payload"))
		return
	}

	student, err := h.students.Create(c.Request.Context(), usecase.CreateStudentInput{
		UserID:     req.UserID,
		CCLID:      req.CCLID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Semester:   req.Semester,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "student already registered"},
		}, http.StatusBadRequest, "failed to register student")
		return
	}

	c.JSON(http.StatusCreated, newStudentView(*student))
}

func (h *StudentHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "student not found"},
		}, http.StatusInternalServerError, "failed to load student")
		return
	}

	c.JSON(http.StatusOK, newStudentView(*student))
}

func (h *StudentHandler) list(c *gin.Context) {
	filter := port.StudentFilter{
		Department: c.Query("department"),
		ActiveOnly: c.Query("active") == "true",
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = offset
	}

	students, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list students"))
		return
	}

	views := make([]StudentView, 0, len(students))
	for _, student := range students {
		views = append(views, newStudentView(student))
	}

	c.JSON(http.StatusOK, views)
}

func (h *StudentHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req StudentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid student payload"))
		return
	}

	student, err := h.students.Update(c.Request.Context(), usecase.UpdateStudentInput{
		ID:         id,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Semester:   req.Semester,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "student not found"},
		}, http.StatusBadRequest, "failed to update student")
		return
	}

	c.JSON(http.StatusOK, newStudentView(*student))
}

func (h *StudentHandler) setActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	if err := h.students.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "student not found"},
		}, http.StatusInternalServerError, "failed to update student")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "student updated"})
}

// pathID parses the :id route parameter, responding 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid id"))
		return 0, false
	}
	return id, true
}
