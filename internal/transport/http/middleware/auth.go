package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/infra/security"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: GetRequestID(c),
	}
}

// RequireAuth validates the Authorization header and attaches the caller
// identity to the request. Every token failure kind results in 401; the
// specific kind is logged, never exposed.
func RequireAuth(authService *usecase.AuthService, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			SetDenyReason(c, domain.DenyTokenInvalid)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		identity, err := authService.ParseAccessToken(token)
		if err != nil {
			reason := domain.DenyTokenInvalid
			if errors.Is(err, security.ErrTokenExpired) {
				reason = domain.DenyTokenExpired
			}
			log.Info("token rejected",
				zap.String("request_id", GetRequestID(c)),
				zap.String("reason", string(reason)),
			)
			SetDenyReason(c, reason)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid or expired token"))
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// RequirePermission gates the route behind the decision engine. The response
// for any deny is a generic 403 so callers cannot probe policy structure; a
// privilege store outage is a 500 instead, since the request was never
// evaluated against complete data.
func RequirePermission(authorizer *usecase.Authorizer, permission, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			SetDenyReason(c, domain.DenyTokenInvalid)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		result, err := authorizer.Authorize(c.Request.Context(), domain.AuthorizationRequest{
			Identity:   identity,
			Permission: permission,
			Resource:   resource,
		})
		if err != nil {
			c.Error(err) //nolint:errcheck
			SetDenyReason(c, result.Reason)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "internal server error"))
			return
		}

		if !result.Allow {
			SetDenyReason(c, result.Reason)
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "forbidden"))
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
