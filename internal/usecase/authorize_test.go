package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

// Mock privilege store shared by the authorization and grant tests.

type grantRepoMock struct {
	grants    map[int64][]domain.Grant
	nextID    int64
	listErr   error
	addErr    error
	removeErr error
}

func (m *grantRepoMock) ListByUser(_ context.Context, userID int64) ([]domain.Grant, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.grants[userID], nil
}

func (m *grantRepoMock) Add(_ context.Context, grant domain.Grant) (domain.Grant, error) {
	if m.addErr != nil {
		return domain.Grant{}, m.addErr
	}
	if m.grants == nil {
		m.grants = make(map[int64][]domain.Grant)
	}
	m.nextID++
	grant.ID = m.nextID
	m.grants[grant.UserID] = append(m.grants[grant.UserID], grant)
	return grant, nil
}

func (m *grantRepoMock) RemoveExact(_ context.Context, userID int64, permission, resource string) (bool, error) {
	if m.removeErr != nil {
		return false, m.removeErr
	}
	kept := m.grants[userID][:0]
	removed := false
	for _, grant := range m.grants[userID] {
		if grant.Matches(permission, resource) {
			removed = true
			continue
		}
		kept = append(kept, grant)
	}
	m.grants[userID] = kept
	return removed, nil
}

func TestAuthorizerRolePolicyAllows(t *testing.T) {
	// The store is broken on purpose; a role policy hit must not reach it.
	repo := &grantRepoMock{listErr: errors.New("store down")}
	authorizer := NewAuthorizer(nil, repo, zap.NewNop())

	result, err := authorizer.Authorize(context.Background(), domain.AuthorizationRequest{
		Identity:   &domain.Identity{ID: 7, Username: "fmalik", Role: domain.RoleFaculty},
		Permission: domain.PermissionTake,
		Resource:   domain.ResourceAttendance,
	})
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if !result.Allow {
		t.Fatalf("expected faculty attendance marking to be allowed, got deny reason %q", result.Reason)
	}
}

func TestAuthorizerDeniesOutsideRolePolicy(t *testing.T) {
	repo := &grantRepoMock{}
	authorizer := NewAuthorizer(nil, repo, zap.NewNop())

	result, err := authorizer.Authorize(context.Background(), domain.AuthorizationRequest{
		Identity:   &domain.Identity{ID: 3, Username: "student1", Role: domain.RoleStudent},
		Permission: domain.PermissionGrade,
		Resource:   domain.ResourceSubmissions,
	})
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if result.Allow {
		t.Fatal("expected deny for student grading submissions")
	}
	if result.Reason != domain.DenyInsufficientPrivilege {
		t.Fatalf("expected reason %q, got %q", domain.DenyInsufficientPrivilege, result.Reason)
	}
}

func TestAuthorizerGrantAllowsBeyondRole(t *testing.T) {
	repo := &grantRepoMock{grants: map[int64][]domain.Grant{
		42: {{ID: 1, UserID: 42, Permission: domain.PermissionGrade, Resource: domain.ResourceStudents}},
	}}
	authorizer := NewAuthorizer(nil, repo, zap.NewNop())

	request := domain.AuthorizationRequest{
		Identity:   &domain.Identity{ID: 42, Username: "ta1", Role: domain.RoleStudent},
		Permission: domain.PermissionGrade,
		Resource:   domain.ResourceStudents,
	}

	result, err := authorizer.Authorize(context.Background(), request)
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if !result.Allow {
		t.Fatalf("expected explicit grant to allow, got deny reason %q", result.Reason)
	}

	// Once the grant is gone the same request must deny again.
	repo.grants[42] = nil
	result, err = authorizer.Authorize(context.Background(), request)
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if result.Allow {
		t.Fatal("expected deny after grant removal")
	}
}

func TestAuthorizerStoreFailureDenies(t *testing.T) {
	repo := &grantRepoMock{listErr: errors.New("connection refused")}
	authorizer := NewAuthorizer(nil, repo, zap.NewNop())

	result, err := authorizer.Authorize(context.Background(), domain.AuthorizationRequest{
		Identity:   &domain.Identity{ID: 3, Username: "student1", Role: domain.RoleStudent},
		Permission: domain.PermissionGrade,
		Resource:   domain.ResourceSubmissions,
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if result.Allow {
		t.Fatal("expected deny when the privilege store is unavailable")
	}
	if result.Reason != domain.DenyStoreUnavailable {
		t.Fatalf("expected reason %q, got %q", domain.DenyStoreUnavailable, result.Reason)
	}
}

func TestAuthorizerUnknownRoleWithoutGrants(t *testing.T) {
	repo := &grantRepoMock{}
	authorizer := NewAuthorizer(nil, repo, zap.NewNop())

	result, err := authorizer.Authorize(context.Background(), domain.AuthorizationRequest{
		Identity:   &domain.Identity{ID: 9, Username: "legacy", Role: domain.Role("registrar")},
		Permission: domain.PermissionRead,
		Resource:   domain.ResourceStudents,
	})
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if result.Allow {
		t.Fatal("expected deny for role without policy entries")
	}
	if result.Reason != domain.DenyNoRolePolicy {
		t.Fatalf("expected reason %q, got %q", domain.DenyNoRolePolicy, result.Reason)
	}
}

func TestAuthorizerNilIdentity(t *testing.T) {
	authorizer := NewAuthorizer(nil, &grantRepoMock{}, zap.NewNop())

	result, err := authorizer.Authorize(context.Background(), domain.AuthorizationRequest{
		Permission: domain.PermissionRead,
		Resource:   domain.ResourceStudents,
	})
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if result.Allow {
		t.Fatal("expected deny for missing identity")
	}
	if result.Reason != domain.DenyTokenInvalid {
		t.Fatalf("expected reason %q, got %q", domain.DenyTokenInvalid, result.Reason)
	}
}
