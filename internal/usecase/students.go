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

// CreateStudentInput captures the payload for registering a student record.
type CreateStudentInput struct {
	UserID     int64
	CCLID      string
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	Department string
	Semester   int
}

// UpdateStudentInput captures the mutable fields of a student record. Nil
// fields are left unchanged.
type UpdateStudentInput struct {
	ID         int64
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Department *string
	Semester   *int
}

// StudentService manages student academic records.
type StudentService struct {
	students port.StudentRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(students port.StudentRepository, logger *zap.Logger) *StudentService {
	return &StudentService{students: students, logger: logger, now: time.Now}
}

// Create registers a student record.
func (s *StudentService) Create(ctx context.Context, input CreateStudentInput) (*domain.Student, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("first and last name are required")
	}
	if input.Department == "" {
		return nil, fmt.Errorf("department is required")
	}
	if input.Semester <= 0 {
		return nil, fmt.Errorf("semester must be positive")
	}

	now := s.now().UTC()
	student := domain.Student{
		UserID:     input.UserID,
		CCLID:      input.CCLID,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      input.Email,
		Phone:      input.Phone,
		Department: input.Department,
		Semester:   input.Semester,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	stored, err := s.students.Create(ctx, student)
	if err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.logger.Info("student registered",
		zap.Int64("student_id", stored.ID),
		zap.String("ccl_id", stored.CCLID),
		zap.String("department", stored.Department),
	)

	return &stored, nil
}

// Get retrieves a student record.
func (s *StudentService) Get(ctx context.Context, id int64) (*domain.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return student, nil
}

// List returns students matching the filter.
func (s *StudentService) List(ctx context.Context, filter port.StudentFilter) ([]domain.Student, error) {
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Update applies changes to a student record.
func (s *StudentService) Update(ctx context.Context, input UpdateStudentInput) (*domain.Student, error) {
	student, err := s.students.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}

	if input.FirstName != nil {
		student.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		student.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		student.Email = input.Email
	}
	if input.Phone != nil {
		student.Phone = input.Phone
	}
	if input.Department != nil {
		student.Department = *input.Department
	}
	if input.Semester != nil {
		if *input.Semester <= 0 {
			return nil, fmt.Errorf("semester must be positive")
		}
		student.Semester = *input.Semester
	}
	student.UpdatedAt = s.now().UTC()

	if err := s.students.Update(ctx, *student); err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}

	return student, nil
}

// SetActive toggles whether the student is currently enrolled at the college.
func (s *StudentService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.students.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set student active: %w", err)
	}
	return nil
}
