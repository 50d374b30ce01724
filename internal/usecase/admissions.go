package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

var (
	// ErrApplicationDecided indicates the application already has a final state.
	ErrApplicationDecided = errors.New("application already decided")
	// ErrInvalidDecision indicates the decision is not accepted or rejected.
	ErrInvalidDecision = errors.New("decision must be accepted or rejected")
)

// ApplyInput captures a prospective student's application.
type ApplyInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Program   string
}

// AdmissionService manages the application pipeline.
type AdmissionService struct {
	admissions port.AdmissionRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(admissions port.AdmissionRepository, logger *zap.Logger) *AdmissionService {
	return &AdmissionService{admissions: admissions, logger: logger, now: time.Now}
}

// Apply files a new application in pending state.
func (s *AdmissionService) Apply(ctx context.Context, input ApplyInput) (*domain.AdmissionApplication, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := strings.TrimSpace(input.Email)
	if firstName == "" || lastName == "" || email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if input.Program == "" {
		return nil, fmt.Errorf("program is required")
	}

	application := domain.AdmissionApplication{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     input.Phone,
		Program:   input.Program,
		Status:    domain.AdmissionPending,
		AppliedAt: s.now().UTC(),
	}

	stored, err := s.admissions.Create(ctx, application)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.logger.Info("admission application filed",
		zap.Int64("application_id", stored.ID),
		zap.String("program", stored.Program),
	)

	return &stored, nil
}

// Get retrieves an application.
func (s *AdmissionService) Get(ctx context.Context, id int64) (*domain.AdmissionApplication, error) {
	application, err := s.admissions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return application, nil
}

// List returns applications, optionally filtered by status.
func (s *AdmissionService) List(ctx context.Context, status domain.AdmissionStatus) ([]domain.AdmissionApplication, error) {
	applications, err := s.admissions.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return applications, nil
}

// Decide moves a pending application to accepted or rejected. Decisions are
// final; a second decision reports ErrApplicationDecided.
func (s *AdmissionService) Decide(ctx context.Context, actor domain.Identity, id int64, status domain.AdmissionStatus) (*domain.AdmissionApplication, error) {
	if status != domain.AdmissionAccepted && status != domain.AdmissionRejected {
		return nil, ErrInvalidDecision
	}

	decidedAt := s.now().UTC()
	if err := s.admissions.Decide(ctx, id, status, actor.ID, decidedAt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrApplicationDecided
		}
		return nil, fmt.Errorf("decide application: %w", err)
	}

	s.logger.Info("admission application decided",
		zap.Int64("application_id", id),
		zap.String("status", string(status)),
		zap.Int64("decided_by", actor.ID),
	)

	return s.Get(ctx, id)
}
