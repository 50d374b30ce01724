package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/infra/security"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

type fakeGrantRepo struct {
	grants  []domain.Grant
	listErr error
}

func (f *fakeGrantRepo) ListByUser(_ context.Context, userID int64) ([]domain.Grant, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Grant
	for _, grant := range f.grants {
		if grant.UserID == userID {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (f *fakeGrantRepo) Add(_ context.Context, grant domain.Grant) (domain.Grant, error) {
	f.grants = append(f.grants, grant)
	return grant, nil
}

func (f *fakeGrantRepo) RemoveExact(_ context.Context, userID int64, permission, resource string) (bool, error) {
	return false, nil
}

func newTestCodec(t *testing.T) *security.TokenCodec {
	t.Helper()
	codec, err := security.NewTokenCodec("0123456789abcdef0123456789abcdef", "cecos-connect", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func protectedRouter(t *testing.T, codec *security.TokenCodec, repo *fakeGrantRepo, permission, resource string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zaptest.NewLogger(t)
	authService := usecase.NewAuthService(nil, codec, nil, log)
	authorizer := usecase.NewAuthorizer(nil, repo, log)

	router := gin.New()
	router.GET("/protected",
		RequireAuth(authService, log),
		RequirePermission(authorizer, permission, resource),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		},
	)
	return router
}

func issueToken(t *testing.T, codec *security.TokenCodec, identity domain.Identity) string {
	t.Helper()
	token, err := codec.Issue(identity)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	codec := newTestCodec(t)
	router := protectedRouter(t, codec, &fakeGrantRepo{}, domain.PermissionRead, domain.ResourceCourses)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	codec := newTestCodec(t)
	router := protectedRouter(t, codec, &fakeGrantRepo{}, domain.PermissionRead, domain.ResourceCourses)

	for _, header := range []string{"Bearer garbage", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rr.Code)
		}
	}
}

func TestRequirePermissionAllowsRolePolicy(t *testing.T) {
	codec := newTestCodec(t)
	router := protectedRouter(t, codec, &fakeGrantRepo{}, domain.PermissionRead, domain.ResourceCourses)

	token := issueToken(t, codec, domain.Identity{ID: 3, Username: "student1", Role: domain.RoleStudent})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequirePermissionDeniesOutsidePolicy(t *testing.T) {
	codec := newTestCodec(t)
	router := protectedRouter(t, codec, &fakeGrantRepo{}, domain.PermissionGrade, domain.ResourceSubmissions)

	token := issueToken(t, codec, domain.Identity{ID: 3, Username: "student1", Role: domain.RoleStudent})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequirePermissionAllowsExplicitGrant(t *testing.T) {
	codec := newTestCodec(t)
	repo := &fakeGrantRepo{grants: []domain.Grant{
		{ID: 1, UserID: 3, Permission: domain.PermissionGrade, Resource: domain.ResourceSubmissions},
	}}
	router := protectedRouter(t, codec, repo, domain.PermissionGrade, domain.ResourceSubmissions)

	token := issueToken(t, codec, domain.Identity{ID: 3, Username: "ta1", Role: domain.RoleStudent})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequirePermissionStoreOutageIsServerError(t *testing.T) {
	codec := newTestCodec(t)
	repo := &fakeGrantRepo{listErr: errors.New("connection refused")}
	router := protectedRouter(t, codec, repo, domain.PermissionGrade, domain.ResourceSubmissions)

	token := issueToken(t, codec, domain.Identity{ID: 3, Username: "student1", Role: domain.RoleStudent})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on store outage, got %d", rr.Code)
	}
}
