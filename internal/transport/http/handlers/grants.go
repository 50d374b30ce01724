package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
	"github.com/Natsdon/CECOS-Connect/internal/transport/http/middleware"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

// GrantHandler exposes privilege lifecycle endpoints. Route-level permission
// checks are applied in routes; the service re-checks the actor role so the
// restriction holds even if wiring changes.
type GrantHandler struct {
	grants *usecase.GrantService
}

// NewGrantHandler constructs GrantHandler.
func NewGrantHandler(grants *usecase.GrantService) *GrantHandler {
	return &GrantHandler{grants: grants}
}

// RegisterRoutes binds privilege routes behind their permission gates.
func (h *GrantHandler) RegisterRoutes(r *gin.RouterGroup, requires PermissionFactory) {
	r.POST("", requires(domain.PermissionGrant, domain.ResourcePrivileges), h.issue)
	r.DELETE("", requires(domain.PermissionRevoke, domain.ResourcePrivileges), h.revoke)
	r.GET("/users/:id", requires(domain.PermissionRead, domain.ResourcePrivileges), h.list)
}

var grantErrorCases = []ErrorCase{
	{Err: usecase.ErrActorNotPermitted, Status: http.StatusForbidden, Message: "forbidden"},
	{Err: usecase.ErrInvalidAction, Status: http.StatusBadRequest, Message: "permission and resource are required"},
	{Err: usecase.ErrUnknownGrantee, Status: http.StatusNotFound, Message: "user not found"},
	{Err: repository.ErrUnavailable, Status: http.StatusInternalServerError, Message: "internal server error"},
}

func (h *GrantHandler) issue(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid grant payload"))
		return
	}

	grant, err := h.grants.Issue(c.Request.Context(), *actor, usecase.GrantInput{
		UserID:     req.UserID,
		Permission: req.Permission,
		Resource:   req.Resource,
	})
	if err != nil {
		RespondWithMappedError(c, err, grantErrorCases, http.StatusInternalServerError, "failed to issue grant")
		return
	}

	c.JSON(http.StatusCreated, newGrantView(*grant))
}

func (h *GrantHandler) revoke(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid revoke payload"))
		return
	}

	removed, err := h.grants.Revoke(c.Request.Context(), *actor, usecase.GrantInput{
		UserID:     req.UserID,
		Permission: req.Permission,
		Resource:   req.Resource,
	})
	if err != nil {
		RespondWithMappedError(c, err, grantErrorCases, http.StatusInternalServerError, "failed to revoke grant")
		return
	}

	c.JSON(http.StatusOK, RevokeResponse{Removed: removed})
}

func (h *GrantHandler) list(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user id"))
		return
	}

	grants, err := h.grants.ListGrants(c.Request.Context(), *actor, userID)
	if err != nil {
		RespondWithMappedError(c, err, grantErrorCases, http.StatusInternalServerError, "failed to list grants")
		return
	}

	views := make([]GrantView, 0, len(grants))
	for _, grant := range grants {
		views = append(views, newGrantView(grant))
	}

	c.JSON(http.StatusOK, views)
}
