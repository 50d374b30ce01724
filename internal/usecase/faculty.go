package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
)

// CreateFacultyInput captures the payload for registering a faculty record.
type CreateFacultyInput struct {
	UserID      int64
	CCLID       string
	FirstName   string
	LastName    string
	Email       *string
	Department  string
	Designation string
}

// UpdateFacultyInput captures the mutable fields of a faculty record.
type UpdateFacultyInput struct {
	ID          int64
	FirstName   *string
	LastName    *string
	Email       *string
	Department  *string
	Designation *string
	IsActive    *bool
}

// FacultyService manages faculty staff records.
type FacultyService struct {
	faculty port.FacultyRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewFacultyService constructs a FacultyService.
func NewFacultyService(faculty port.FacultyRepository, logger *zap.Logger) *FacultyService {
	return &FacultyService{faculty: faculty, logger: logger, now: time.Now}
}

// Create registers a faculty record.
func (s *FacultyService) Create(ctx context.Context, input CreateFacultyInput) (*domain.FacultyMember, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("first and last name are required")
	}
	if input.Department == "" {
		return nil, fmt.Errorf("department is required")
	}

	member := domain.FacultyMember{
		UserID:      input.UserID,
		CCLID:       input.CCLID,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       input.Email,
		Department:  input.Department,
		Designation: input.Designation,
		IsActive:    true,
		CreatedAt:   s.now().UTC(),
	}

	stored, err := s.faculty.Create(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("create faculty: %w", err)
	}

	s.logger.Info("faculty registered",
		zap.Int64("faculty_id", stored.ID),
		zap.String("ccl_id", stored.CCLID),
		zap.String("department", stored.Department),
	)

	return &stored, nil
}

// Get retrieves a faculty record.
func (s *FacultyService) Get(ctx context.Context, id int64) (*domain.FacultyMember, error) {
	member, err := s.faculty.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get faculty: %w", err)
	}
	return member, nil
}

// List returns faculty records, optionally filtered by department.
func (s *FacultyService) List(ctx context.Context, department string) ([]domain.FacultyMember, error) {
	members, err := s.faculty.List(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return members, nil
}

// Update applies changes to a faculty record.
func (s *FacultyService) Update(ctx context.Context, input UpdateFacultyInput) (*domain.FacultyMember, error) {
	member, err := s.faculty.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get faculty: %w", err)
	}

	if input.FirstName != nil {
		member.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		member.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		member.Email = input.Email
	}
	if input.Department != nil {
		member.Department = *input.Department
	}
	if input.Designation != nil {
		member.Designation = *input.Designation
	}
	if input.IsActive != nil {
		member.IsActive = *input.IsActive
	}

	if err := s.faculty.Update(ctx, *member); err != nil {
		return nil, fmt.Errorf("update faculty: %w", err)
	}

	return member, nil
}
