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

type admissionRepoMock struct {
	applications map[int64]domain.AdmissionApplication
	nextID       int64
}

func (m *admissionRepoMock) Create(_ context.Context, application domain.AdmissionApplication) (domain.AdmissionApplication, error) {
	if m.applications == nil {
		m.applications = make(map[int64]domain.AdmissionApplication)
	}
	m.nextID++
	application.ID = m.nextID
	m.applications[application.ID] = application
	return application, nil
}

func (m *admissionRepoMock) GetByID(_ context.Context, id int64) (*domain.AdmissionApplication, error) {
	application, ok := m.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &application, nil
}

func (m *admissionRepoMock) List(_ context.Context, status domain.AdmissionStatus) ([]domain.AdmissionApplication, error) {
	var out []domain.AdmissionApplication
	for _, application := range m.applications {
		if status != "" && application.Status != status {
			continue
		}
		out = append(out, application)
	}
	return out, nil
}

func (m *admissionRepoMock) Decide(_ context.Context, id int64, status domain.AdmissionStatus, decidedBy int64, decidedAt time.Time) error {
	application, ok := m.applications[id]
	if !ok {
		return repository.ErrNotFound
	}
	if application.Status != domain.AdmissionPending {
		return repository.ErrConflict
	}
	application.Status = status
	application.DecidedBy = &decidedBy
	application.DecidedAt = &decidedAt
	m.applications[id] = application
	return nil
}

func admissionAdmin() domain.Identity {
	return domain.Identity{ID: 2, Username: "admin1", Role: domain.RoleAdmin}
}

func fileApplication(t *testing.T, svc *AdmissionService) *domain.AdmissionApplication {
	t.Helper()
	application, err := svc.Apply(context.Background(), ApplyInput{
		FirstName: "Sara",
		LastName:  "Iqbal",
		Email:     "sara.iqbal@example.com",
		Program:   "BS Computer Science",
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	return application
}

func TestAdmissionServiceApply(t *testing.T) {
	svc := NewAdmissionService(&admissionRepoMock{}, zap.NewNop())

	application := fileApplication(t, svc)
	if application.Status != domain.AdmissionPending {
		t.Fatalf("expected pending status, got %q", application.Status)
	}
	if application.ID == 0 {
		t.Fatal("expected an assigned application id")
	}
}

func TestAdmissionServiceApplyValidation(t *testing.T) {
	svc := NewAdmissionService(&admissionRepoMock{}, zap.NewNop())

	if _, err := svc.Apply(context.Background(), ApplyInput{LastName: "Iqbal", Email: "x@example.com", Program: "BSCS"}); err == nil {
		t.Fatal("expected error for missing first name")
	}
	if _, err := svc.Apply(context.Background(), ApplyInput{FirstName: "Sara", LastName: "Iqbal", Email: "x@example.com"}); err == nil {
		t.Fatal("expected error for missing program")
	}
}

func TestAdmissionServiceDecideIsFinal(t *testing.T) {
	svc := NewAdmissionService(&admissionRepoMock{}, zap.NewNop())
	application := fileApplication(t, svc)

	decided, err := svc.Decide(context.Background(), admissionAdmin(), application.ID, domain.AdmissionAccepted)
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if decided.Status != domain.AdmissionAccepted {
		t.Fatalf("expected accepted status, got %q", decided.Status)
	}
	if decided.DecidedBy == nil || *decided.DecidedBy != 2 {
		t.Fatal("expected decision attributed to the actor")
	}

	if _, err := svc.Decide(context.Background(), admissionAdmin(), application.ID, domain.AdmissionRejected); !errors.Is(err, ErrApplicationDecided) {
		t.Fatalf("expected ErrApplicationDecided, got %v", err)
	}
}

func TestAdmissionServiceDecideRejectsBadStatus(t *testing.T) {
	svc := NewAdmissionService(&admissionRepoMock{}, zap.NewNop())
	application := fileApplication(t, svc)

	for _, status := range []domain.AdmissionStatus{domain.AdmissionPending, domain.AdmissionStatus("waitlisted")} {
		if _, err := svc.Decide(context.Background(), admissionAdmin(), application.ID, status); !errors.Is(err, ErrInvalidDecision) {
			t.Fatalf("status %q: expected ErrInvalidDecision, got %v", status, err)
		}
	}
}
