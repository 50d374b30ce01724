package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

func instrumentedRouter(t *testing.T, repo *fakeGrantRepo) (*gin.Engine, *HTTPMetrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{
		Registerer: prometheus.NewRegistry(),
		Namespace:  "cecos_test",
	})
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}

	log := zaptest.NewLogger(t)
	codec := newTestCodec(t)
	authService := usecase.NewAuthService(nil, codec, nil, log)
	authorizer := usecase.NewAuthorizer(nil, repo, log)

	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/protected",
		RequireAuth(authService, log),
		RequirePermission(authorizer, domain.PermissionGrade, domain.ResourceSubmissions),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		},
	)
	return router, metrics
}

func TestHTTPMetricsDenialsLabelledByReason(t *testing.T) {
	router, metrics := instrumentedRouter(t, &fakeGrantRepo{})
	codec := newTestCodec(t)

	// A missing credential counts as a token denial.
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	// A valid token without the privilege counts as an insufficient-privilege denial.
	token := issueToken(t, codec, domain.Identity{ID: 3, Username: "student1", Role: domain.RoleStudent})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	tokenDenials := testutil.ToFloat64(metrics.Denials.WithLabelValues("/protected", "401", string(domain.DenyTokenInvalid)))
	if tokenDenials != 1 {
		t.Fatalf("expected one token_invalid denial, got %v", tokenDenials)
	}
	privilegeDenials := testutil.ToFloat64(metrics.Denials.WithLabelValues("/protected", "403", string(domain.DenyInsufficientPrivilege)))
	if privilegeDenials != 1 {
		t.Fatalf("expected one insufficient_privilege denial, got %v", privilegeDenials)
	}
}

func TestHTTPMetricsAllowedRequestNotCounted(t *testing.T) {
	repo := &fakeGrantRepo{grants: []domain.Grant{
		{ID: 1, UserID: 3, Permission: domain.PermissionGrade, Resource: domain.ResourceSubmissions},
	}}
	router, metrics := instrumentedRouter(t, repo)
	codec := newTestCodec(t)

	token := issueToken(t, codec, domain.Identity{ID: 3, Username: "ta1", Role: domain.RoleStudent})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	requests := testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "/protected", "200"))
	if requests != 1 {
		t.Fatalf("expected one counted request, got %v", requests)
	}
	if count := testutil.CollectAndCount(metrics.Denials); count != 0 {
		t.Fatalf("expected no denial series for an allowed request, got %d", count)
	}
}
