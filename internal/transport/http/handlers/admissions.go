package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
	"github.com/Natsdon/CECOS-Connect/internal/transport/http/middleware"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

// AdmissionHandler exposes admission application endpoints. Filing an
// application is public; reading and deciding are gated in routes.
type AdmissionHandler struct {
	admissions *usecase.AdmissionService
}

// NewAdmissionHandler constructs AdmissionHandler.
func NewAdmissionHandler(admissions *usecase.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{admissions: admissions}
}

// RegisterRoutes binds admission routes. Filing an application stays open so
// applicants without accounts can reach it; everything else sits behind the
// protected group.
func (h *AdmissionHandler) RegisterRoutes(public, protected *gin.RouterGroup, requires PermissionFactory) {
	public.POST("", h.apply)

	protected.GET("", requires(domain.PermissionRead, domain.ResourceAdmissions), h.list)
	protected.GET("/:id", requires(domain.PermissionRead, domain.ResourceAdmissions), h.get)
	protected.POST("/:id/decision", requires(domain.PermissionDecide, domain.ResourceAdmissions), h.decide)
}

func (h *AdmissionHandler) apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid application payload"))
		return
	}

	application, err := h.admissions.Apply(c.Request.Context(), usecase.ApplyInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Program:   req.Program,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "failed to file application"))
		return
	}

	c.JSON(http.StatusCreated, newApplicationView(*application))
}

func (h *AdmissionHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	application, err := h.admissions.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "application not found"},
		}, http.StatusInternalServerError, "failed to load application")
		return
	}

	c.JSON(http.StatusOK, newApplicationView(*application))
}

func (h *AdmissionHandler) list(c *gin.Context) {
	applications, err := h.admissions.List(c.Request.Context(), domain.AdmissionStatus(c.Query("status")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list applications"))
		return
	}

	views := make([]ApplicationView, 0, len(applications))
	for _, application := range applications {
		views = append(views, newApplicationView(application))
	}

	c.JSON(http.StatusOK, views)
}

func (h *AdmissionHandler) decide(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid decision payload"))
		return
	}

	application, err := h.admissions.Decide(c.Request.Context(), *actor, id, domain.AdmissionStatus(req.Status))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidDecision, Status: http.StatusBadRequest, Message: "decision must be accepted or rejected"},
			{Err: usecase.ErrApplicationDecided, Status: http.StatusConflict, Message: "application already decided"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "application not found"},
		}, http.StatusInternalServerError, "failed to decide application")
		return
	}

	c.JSON(http.StatusOK, newApplicationView(*application))
}
