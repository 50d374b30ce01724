package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

// FacultyHandler exposes faculty record endpoints.
type FacultyHandler struct {
	faculty *usecase.FacultyService
}

// NewFacultyHandler constructs FacultyHandler.
func NewFacultyHandler(faculty *usecase.FacultyService) *FacultyHandler {
	return &FacultyHandler{faculty: faculty}
}

// RegisterRoutes binds faculty record routes behind their permission gates.
func (h *FacultyHandler) RegisterRoutes(r *gin.RouterGroup, requires PermissionFactory) {
	r.POST("", requires(domain.PermissionCreate, domain.ResourceFaculty), h.create)
	r.GET("", requires(domain.PermissionRead, domain.ResourceFaculty), h.list)
	r.GET("/:id", requires(domain.PermissionRead, domain.ResourceFaculty), h.get)
	r.PUT("/:id", requires(domain.PermissionUpdate, domain.ResourceFaculty), h.update)
}

func (h *FacultyHandler) create(c *gin.Context) {
	var req FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid faculty payload"))
		return
	}

	member, err := h.faculty.Create(c.Request.Context(), usecase.CreateFacultyInput{
		UserID:      req.UserID,
		CCLID:       req.CCLID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Department:  req.Department,
		Designation: req.Designation,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "faculty already registered"},
		}, http.StatusBadRequest, "failed to register faculty")
		return
	}

	c.JSON(http.StatusCreated, newFacultyView(*member))
}

func (h *FacultyHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	member, err := h.faculty.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "faculty not found"},
		}, http.StatusInternalServerError, "failed to load faculty")
		return
	}

	c.JSON(http.StatusOK, newFacultyView(*member))
}

func (h *FacultyHandler) list(c *gin.Context) {
	members, err := h.faculty.List(c.Request.Context(), c.Query("department"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list faculty"))
		return
	}

	views := make([]FacultyView, 0, len(members))
	for _, member := range members {
		views = append(views, newFacultyView(member))
	}

	c.JSON(http.StatusOK, views)
}

func (h *FacultyHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req FacultyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid faculty payload"))
		return
	}

	member, err := h.faculty.Update(c.Request.Context(), usecase.UpdateFacultyInput{
		ID:          id,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Department:  req.Department,
		Designation: req.Designation,
		IsActive:    req.IsActive,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "faculty not found"},
		}, http.StatusBadRequest, "failed to update faculty")
		return
	}

	c.JSON(http.StatusOK, newFacultyView(*member))
}
