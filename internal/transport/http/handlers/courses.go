package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

// CourseHandler exposes course catalog and enrollment endpoints.
type CourseHandler struct {
	courses *usecase.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *usecase.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// RegisterRoutes binds the course catalog and enrollment routes behind their
// permission gates.
func (h *CourseHandler) RegisterRoutes(courses, enrollments *gin.RouterGroup, requires PermissionFactory) {
	courses.POST("", requires(domain.PermissionCreate, domain.ResourceCourses), h.create)
	courses.GET("", requires(domain.PermissionRead, domain.ResourceCourses), h.list)
	courses.GET("/:id", requires(domain.PermissionRead, domain.ResourceCourses), h.get)
	courses.PUT("/:id", requires(domain.PermissionUpdate, domain.ResourceCourses), h.update)
	courses.DELETE("/:id", requires(domain.PermissionDelete, domain.ResourceCourses), h.remove)
	courses.GET("/:id/roster", requires(domain.PermissionRead, domain.ResourceEnrollments), h.roster)

	enrollments.POST("", requires(domain.PermissionCreate, domain.ResourceEnrollments), h.enroll)
	enrollments.DELETE("/:id", requires(domain.PermissionDelete, domain.ResourceEnrollments), h.unenroll)
	enrollments.GET("/students/:id", requires(domain.PermissionRead, domain.ResourceEnrollments), h.studentEnrollments)
}

func (h *CourseHandler) create(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid course payload"))
		return
	}

	course, err := h.courses.Create(c.Request.Context(), usecase.CreateCourseInput{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		CreditHours: req.CreditHours,
		FacultyID:   req.FacultyID,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCourseCodeTaken, Status: http.StatusConflict, Message: "course code already taken"},
		}, http.StatusBadRequest, "failed to create course")
		return
	}

	c.JSON(http.StatusCreated, newCourseView(*course))
}

func (h *CourseHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "course not found"},
		}, http.StatusInternalServerError, "failed to load course")
		return
	}

	c.JSON(http.StatusOK, newCourseView(*course))
}

func (h *CourseHandler) list(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context(), c.Query("department"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list courses"))
		return
	}

	views := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, newCourseView(course))
	}

	c.JSON(http.StatusOK, views)
}

func (h *CourseHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CourseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid course payload"))
		return
	}

	course, err := h.courses.Update(c.Request.Context(), usecase.UpdateCourseInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		CreditHours: req.CreditHours,
		FacultyID:   req.FacultyID,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "course not found"},
		}, http.StatusBadRequest, "failed to update course")
		return
	}

	c.JSON(http.StatusOK, newCourseView(*course))
}

func (h *CourseHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "course not found"},
		}, http.StatusInternalServerError, "failed to delete course")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "course deleted"})
}

func (h *CourseHandler) enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid enrollment payload"))
		return
	}

	enrollment, err := h.courses.Enroll(c.Request.Context(), usecase.EnrollInput{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Semester:  req.Semester,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAlreadyEnrolled, Status: http.StatusConflict, Message: "student already enrolled"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "student or course not found"},
		}, http.StatusBadRequest, "failed to enroll student")
		return
	}

	c.JSON(http.StatusCreated, newEnrollmentView(*enrollment))
}

func (h *CourseHandler) roster(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	enrollments, err := h.courses.ListEnrollmentsByCourse(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list enrollments"))
		return
	}

	views := make([]EnrollmentView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		views = append(views, newEnrollmentView(enrollment))
	}

	c.JSON(http.StatusOK, views)
}

func (h *CourseHandler) studentEnrollments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	enrollments, err := h.courses.ListEnrollmentsByStudent(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list enrollments"))
		return
	}

	views := make([]EnrollmentView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		views = append(views, newEnrollmentView(enrollment))
	}

	c.JSON(http.StatusOK, views)
}

func (h *CourseHandler) unenroll(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.courses.Unenroll(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "enrollment not found"},
		}, http.StatusInternalServerError, "failed to remove enrollment")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "enrollment removed"})
}
