package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

type userRepoMock struct {
	users        map[int64]domain.User
	byIdentifier map[string]int64
	nextID       int64
	createErr    error
	lookupErr    error
	loginStamps  map[int64]time.Time
	activeFlips  map[int64]bool
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) (domain.User, error) {
	if m.createErr != nil {
		return domain.User{}, m.createErr
	}
	if m.users == nil {
		m.users = make(map[int64]domain.User)
		m.byIdentifier = make(map[string]int64)
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	m.byIdentifier[user.Username] = user.ID
	m.byIdentifier[user.CCLID] = user.ID
	return user, nil
}

func (m *userRepoMock) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (m *userRepoMock) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	id, ok := m.byIdentifier[identifier]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := m.users[id]
	return &user, nil
}

func (m *userRepoMock) SetActive(_ context.Context, id int64, active bool) error {
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsActive = active
	m.users[id] = user
	if m.activeFlips == nil {
		m.activeFlips = make(map[int64]bool)
	}
	m.activeFlips[id] = active
	return nil
}

func (m *userRepoMock) RecordLogin(_ context.Context, id int64, at time.Time) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	if m.loginStamps == nil {
		m.loginStamps = make(map[int64]time.Time)
	}
	m.loginStamps[id] = at
	return nil
}

type publisherMock struct {
	issued  []domain.GrantIssuedEvent
	revoked []domain.GrantRevokedEvent
	logins  []domain.UserLoggedInEvent
	err     error
}

func (m *publisherMock) PublishGrantIssued(_ context.Context, event domain.GrantIssuedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.issued = append(m.issued, event)
	return nil
}

func (m *publisherMock) PublishGrantRevoked(_ context.Context, event domain.GrantRevokedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, event)
	return nil
}

func (m *publisherMock) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	if m.err != nil {
		return m.err
	}
	m.logins = append(m.logins, event)
	return nil
}

func eprAdmin() domain.Identity {
	return domain.Identity{ID: 1, Username: "epradmin", Role: domain.RoleEPRAdmin}
}

func seedGrantService(t *testing.T) (*GrantService, *grantRepoMock, *userRepoMock, *publisherMock) {
	t.Helper()
	grants := &grantRepoMock{}
	users := &userRepoMock{}
	if _, err := users.Create(context.Background(), domain.User{
		Username: "tassist",
		CCLID:    "CCL-STD-0001",
		Role:     domain.RoleStudent,
		IsActive: true,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	publisher := &publisherMock{}
	svc := NewGrantService(grants, users, publisher, zap.NewNop())
	return svc, grants, users, publisher
}

func TestGrantServiceIssue(t *testing.T) {
	svc, grants, _, publisher := seedGrantService(t)
	issuedAt := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return issuedAt })

	grant, err := svc.Issue(context.Background(), eprAdmin(), GrantInput{
		UserID:     1,
		Permission: "  grade  ",
		Resource:   "submissions",
	})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if grant.Permission != "grade" || grant.Resource != "submissions" {
		t.Fatalf("expected normalized action, got %q/%q", grant.Permission, grant.Resource)
	}
	if grant.GrantedBy != 1 {
		t.Fatalf("expected grant attributed to actor 1, got %d", grant.GrantedBy)
	}
	if !grant.GrantedAt.Equal(issuedAt) {
		t.Fatalf("expected grant stamped %v, got %v", issuedAt, grant.GrantedAt)
	}
	if len(grants.grants[1]) != 1 {
		t.Fatalf("expected one stored grant, got %d", len(grants.grants[1]))
	}
	if len(publisher.issued) != 1 {
		t.Fatalf("expected one issued event, got %d", len(publisher.issued))
	}
	if publisher.issued[0].GrantID != grant.ID {
		t.Fatalf("expected event for grant %d, got %d", grant.ID, publisher.issued[0].GrantID)
	}
}

func TestGrantServiceIssueRequiresEPRAdmin(t *testing.T) {
	svc, grants, _, publisher := seedGrantService(t)

	actors := []domain.Identity{
		{ID: 2, Username: "admin1", Role: domain.RoleAdmin},
		{ID: 3, Username: "prof", Role: domain.RoleFaculty},
		{},
	}
	for _, actor := range actors {
		_, err := svc.Issue(context.Background(), actor, GrantInput{
			UserID:     1,
			Permission: "grade",
			Resource:   "submissions",
		})
		if !errors.Is(err, ErrActorNotPermitted) {
			t.Fatalf("actor %q: expected ErrActorNotPermitted, got %v", actor.Username, err)
		}
	}
	if len(grants.grants) != 0 {
		t.Fatal("expected no grants stored for rejected actors")
	}
	if len(publisher.issued) != 0 {
		t.Fatal("expected no events for rejected actors")
	}
}

func TestGrantServiceIssueValidation(t *testing.T) {
	svc, _, _, _ := seedGrantService(t)

	if _, err := svc.Issue(context.Background(), eprAdmin(), GrantInput{UserID: 1, Permission: " ", Resource: "submissions"}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction for blank permission, got %v", err)
	}
	if _, err := svc.Issue(context.Background(), eprAdmin(), GrantInput{UserID: 1, Permission: "grade", Resource: ""}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction for blank resource, got %v", err)
	}
	if _, err := svc.Issue(context.Background(), eprAdmin(), GrantInput{UserID: 404, Permission: "grade", Resource: "submissions"}); !errors.Is(err, ErrUnknownGrantee) {
		t.Fatalf("expected ErrUnknownGrantee, got %v", err)
	}
}

func TestGrantServiceRevoke(t *testing.T) {
	svc, _, _, publisher := seedGrantService(t)

	input := GrantInput{UserID: 1, Permission: "grade", Resource: "submissions"}
	if _, err := svc.Issue(context.Background(), eprAdmin(), input); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	removed, err := svc.Revoke(context.Background(), eprAdmin(), input)
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if !removed {
		t.Fatal("expected revoke to remove the stored grant")
	}

	// Revoking again is a no-op, not an error.
	removed, err = svc.Revoke(context.Background(), eprAdmin(), input)
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if removed {
		t.Fatal("expected second revoke to report nothing removed")
	}

	if len(publisher.revoked) != 2 {
		t.Fatalf("expected two revoked events, got %d", len(publisher.revoked))
	}
	if !publisher.revoked[0].Removed || publisher.revoked[1].Removed {
		t.Fatal("expected removed flags true then false")
	}
}

func TestGrantServiceRevokeRemovesAllMatchingRows(t *testing.T) {
	svc, grants, _, _ := seedGrantService(t)

	// The store holds duplicates when the same triple is issued twice.
	input := GrantInput{UserID: 1, Permission: "grade", Resource: "students"}
	for i := 0; i < 2; i++ {
		if _, err := svc.Issue(context.Background(), eprAdmin(), input); err != nil {
			t.Fatalf("Issue returned error: %v", err)
		}
	}
	if len(grants.grants[1]) != 2 {
		t.Fatalf("expected two stored grants, got %d", len(grants.grants[1]))
	}

	removed, err := svc.Revoke(context.Background(), eprAdmin(), input)
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if !removed {
		t.Fatal("expected revoke to report a removal")
	}
	if len(grants.grants[1]) != 0 {
		t.Fatalf("expected a single revoke to remove every matching row, %d left", len(grants.grants[1]))
	}

	// With the rows gone the engine denies the formerly granted action.
	authorizer := NewAuthorizer(nil, grants, zap.NewNop())
	result, err := authorizer.Authorize(context.Background(), domain.AuthorizationRequest{
		Identity:   &domain.Identity{ID: 1, Username: "tassist", Role: domain.RoleStudent},
		Permission: "grade",
		Resource:   "students",
	})
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if result.Allow {
		t.Fatal("expected deny after the grants were revoked")
	}
}

func TestGrantServiceListGrantsRequiresEPRAdmin(t *testing.T) {
	svc, _, _, _ := seedGrantService(t)

	if _, err := svc.ListGrants(context.Background(), domain.Identity{ID: 2, Role: domain.RoleAdmin}, 1); !errors.Is(err, ErrActorNotPermitted) {
		t.Fatalf("expected ErrActorNotPermitted, got %v", err)
	}

	grants, err := svc.ListGrants(context.Background(), eprAdmin(), 1)
	if err != nil {
		t.Fatalf("ListGrants returned error: %v", err)
	}
	if len(grants) != 0 {
		t.Fatalf("expected empty grant list, got %d", len(grants))
	}
}
