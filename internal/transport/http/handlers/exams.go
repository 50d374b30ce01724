package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
	"github.com/Natsdon/CECOS-Connect/internal/transport/http/middleware"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

// ExamHandler exposes exam, submission and grading endpoints.
type ExamHandler struct {
	exams *usecase.ExamService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams *usecase.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// RegisterRoutes binds exam, submission and grading routes behind their
// permission gates. Exam listings for a course hang off the course routes.
func (h *ExamHandler) RegisterRoutes(exams, submissions, courses *gin.RouterGroup, requires PermissionFactory) {
	exams.POST("", requires(domain.PermissionCreate, domain.ResourceExams), h.create)
	exams.GET("/:id", requires(domain.PermissionRead, domain.ResourceExams), h.get)
	exams.PUT("/:id", requires(domain.PermissionUpdate, domain.ResourceExams), h.update)
	exams.POST("/:id/submissions", requires(domain.PermissionSubmit, domain.ResourceSubmissions), h.submit)
	exams.GET("/:id/submissions", requires(domain.PermissionRead, domain.ResourceResults), h.listSubmissions)

	submissions.GET("/:id", requires(domain.PermissionRead, domain.ResourceResults), h.getSubmission)
	submissions.POST("/:id/grade", requires(domain.PermissionGrade, domain.ResourceSubmissions), h.grade)

	courses.GET("/:id/exams", requires(domain.PermissionRead, domain.ResourceExams), h.listByCourse)
}

func (h *ExamHandler) create(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid exam payload"))
		return
	}

	exam, err := h.exams.Create(c.Request.Context(), *actor, usecase.CreateExamInput{
		CourseID:    req.CourseID,
		Title:       req.Title,
		ScheduledAt: req.ScheduledAt,
		TotalMarks:  req.TotalMarks,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "failed to schedule exam"))
		return
	}

	c.JSON(http.StatusCreated, newExamView(*exam))
}

func (h *ExamHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	exam, err := h.exams.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "exam not found"},
		}, http.StatusInternalServerError, "failed to load exam")
		return
	}

	c.JSON(http.StatusOK, newExamView(*exam))
}

func (h *ExamHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ExamUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid exam payload"))
		return
	}

	exam, err := h.exams.Update(c.Request.Context(), id, usecase.UpdateExamInput{
		Title:       req.Title,
		ScheduledAt: req.ScheduledAt,
		TotalMarks:  req.TotalMarks,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "exam not found"},
		}, http.StatusBadRequest, "failed to update exam")
		return
	}

	c.JSON(http.StatusOK, newExamView(*exam))
}

func (h *ExamHandler) listByCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	exams, err := h.exams.ListByCourse(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list exams"))
		return
	}

	views := make([]ExamView, 0, len(exams))
	for _, exam := range exams {
		views = append(views, newExamView(exam))
	}

	c.JSON(http.StatusOK, views)
}

func (h *ExamHandler) submit(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	examID, ok := pathID(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid submission payload"))
		return
	}

	submission, err := h.exams.Submit(c.Request.Context(), usecase.SubmitInput{
		ExamID:    examID,
		StudentID: actor.ID,
		Content:   req.Content,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDuplicateSubmission, Status: http.StatusConflict, Message: "submission already exists"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "exam not found"},
		}, http.StatusBadRequest, "failed to store submission")
		return
	}

	c.JSON(http.StatusCreated, newSubmissionView(*submission))
}

func (h *ExamHandler) listSubmissions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	submissions, err := h.exams.ListSubmissions(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list submissions"))
		return
	}

	views := make([]SubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		views = append(views, newSubmissionView(submission))
	}

	c.JSON(http.StatusOK, views)
}

func (h *ExamHandler) getSubmission(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	submission, err := h.exams.GetSubmission(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "submission not found"},
		}, http.StatusInternalServerError, "failed to load submission")
		return
	}

	c.JSON(http.StatusOK, newSubmissionView(*submission))
}

func (h *ExamHandler) grade(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ObtainedMarks == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid grade payload"))
		return
	}

	submission, err := h.exams.Grade(c.Request.Context(), *actor, usecase.GradeInput{
		SubmissionID:  id,
		ObtainedMarks: *req.ObtainedMarks,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMarksOutOfRange, Status: http.StatusBadRequest, Message: "marks out of range"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "submission not found"},
		}, http.StatusInternalServerError, "failed to grade submission")
		return
	}

	c.JSON(http.StatusOK, newSubmissionView(*submission))
}
