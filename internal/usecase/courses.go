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
	// ErrCourseCodeTaken indicates a course with the same code exists.
	ErrCourseCodeTaken = errors.New("course code already taken")
	// ErrAlreadyEnrolled indicates the student is already enrolled in the
	// course for the semester.
	ErrAlreadyEnrolled = errors.New("student already enrolled")
)

// CreateCourseInput captures the payload for adding a course.
type CreateCourseInput struct {
	Code        string
	Title       string
	Description *string
	Department  string
	CreditHours int
	FacultyID   *int64
}

// UpdateCourseInput captures the mutable fields of a course.
type UpdateCourseInput struct {
	ID          int64
	Title       *string
	Description *string
	Department  *string
	CreditHours *int
	FacultyID   *int64
}

// EnrollInput captures the payload for enrolling a student into a course.
type EnrollInput struct {
	StudentID int64
	CourseID  int64
	Semester  string
}

// CourseService manages the course catalog and enrollments.
type CourseService struct {
	courses     port.CourseRepository
	enrollments port.EnrollmentRepository
	students    port.StudentRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses port.CourseRepository, enrollments port.EnrollmentRepository, students port.StudentRepository, logger *zap.Logger) *CourseService {
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		students:    students,
		logger:      logger,
		now:         time.Now,
	}
}

// Create adds a course to the catalog.
func (s *CourseService) Create(ctx context.Context, input CreateCourseInput) (*domain.Course, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	title := strings.TrimSpace(input.Title)
	if code == "" || title == "" {
		return nil, fmt.Errorf("course code and title are required")
	}
	if input.CreditHours <= 0 {
		return nil, fmt.Errorf("credit hours must be positive")
	}

	course := domain.Course{
		Code:        code,
		Title:       title,
		Description: input.Description,
		Department:  input.Department,
		CreditHours: input.CreditHours,
		FacultyID:   input.FacultyID,
		CreatedAt:   s.now().UTC(),
	}

	stored, err := s.courses.Create(ctx, course)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCourseCodeTaken
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.logger.Info("course created",
		zap.Int64("course_id", stored.ID),
		zap.String("code", stored.Code),
	)

	return &stored, nil
}

// Get retrieves a course.
func (s *CourseService) Get(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// List returns courses, optionally filtered by department.
func (s *CourseService) List(ctx context.Context, department string) ([]domain.Course, error) {
	courses, err := s.courses.List(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Update applies changes to a course.
func (s *CourseService) Update(ctx context.Context, input UpdateCourseInput) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	if input.Title != nil {
		course.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		course.Description = input.Description
	}
	if input.Department != nil {
		course.Department = *input.Department
	}
	if input.CreditHours != nil {
		if *input.CreditHours <= 0 {
			return nil, fmt.Errorf("credit hours must be positive")
		}
		course.CreditHours = *input.CreditHours
	}
	if input.FacultyID != nil {
		course.FacultyID = input.FacultyID
	}

	if err := s.courses.Update(ctx, *course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	return course, nil
}

// Delete removes a course from the catalog.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// Enroll registers a student into a course for a semester.
func (s *CourseService) Enroll(ctx context.Context, input EnrollInput) (*domain.Enrollment, error) {
	if input.Semester == "" {
		return nil, fmt.Errorf("semester is required")
	}

	if _, err := s.students.GetByID(ctx, input.StudentID); err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if _, err := s.courses.GetByID(ctx, input.CourseID); err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	enrollment := domain.Enrollment{
		StudentID:  input.StudentID,
		CourseID:   input.CourseID,
		Semester:   input.Semester,
		EnrolledAt: s.now().UTC(),
	}

	stored, err := s.enrollments.Create(ctx, enrollment)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	s.logger.Info("student enrolled",
		zap.Int64("enrollment_id", stored.ID),
		zap.Int64("student_id", stored.StudentID),
		zap.Int64("course_id", stored.CourseID),
		zap.String("semester", stored.Semester),
	)

	return &stored, nil
}

// ListEnrollmentsByStudent returns the student's enrollments.
func (s *CourseService) ListEnrollmentsByStudent(ctx context.Context, studentID int64) ([]domain.Enrollment, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListEnrollmentsByCourse returns the course roster.
func (s *CourseService) ListEnrollmentsByCourse(ctx context.Context, courseID int64) ([]domain.Enrollment, error) {
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// Unenroll removes an enrollment.
func (s *CourseService) Unenroll(ctx context.Context, enrollmentID int64) error {
	if err := s.enrollments.Delete(ctx, enrollmentID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}
