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
	// ErrDuplicateSubmission indicates the student already submitted for the exam.
	ErrDuplicateSubmission = errors.New("submission already exists")
	// ErrMarksOutOfRange indicates the obtained marks exceed the exam total.
	ErrMarksOutOfRange = errors.New("marks out of range")
)

// CreateExamInput captures the payload for scheduling an exam.
type CreateExamInput struct {
	CourseID    int64
	Title       string
	ScheduledAt time.Time
	TotalMarks  int
}

// UpdateExamInput captures a partial exam update. Nil fields are untouched.
type UpdateExamInput struct {
	Title       *string
	ScheduledAt *time.Time
	TotalMarks  *int
}

// SubmitInput captures a student's exam submission.
type SubmitInput struct {
	ExamID    int64
	StudentID int64
	Content   string
}

// GradeInput captures the grading of one submission.
type GradeInput struct {
	SubmissionID  int64
	ObtainedMarks int
}

// ExamService manages exams, submissions and grading.
type ExamService struct {
	exams  port.ExamRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewExamService constructs an ExamService.
func NewExamService(exams port.ExamRepository, logger *zap.Logger) *ExamService {
	return &ExamService{exams: exams, logger: logger, now: time.Now}
}

// WithClock injects a custom clock, primarily for tests.
func (s *ExamService) WithClock(now func() time.Time) *ExamService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create schedules an exam for a course.
func (s *ExamService) Create(ctx context.Context, actor domain.Identity, input CreateExamInput) (*domain.Exam, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("exam title is required")
	}
	if input.TotalMarks <= 0 {
		return nil, fmt.Errorf("total marks must be positive")
	}

	exam := domain.Exam{
		CourseID:    input.CourseID,
		Title:       title,
		ScheduledAt: input.ScheduledAt,
		TotalMarks:  input.TotalMarks,
		CreatedBy:   actor.ID,
		CreatedAt:   s.now().UTC(),
	}

	stored, err := s.exams.Create(ctx, exam)
	if err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.logger.Info("exam scheduled",
		zap.Int64("exam_id", stored.ID),
		zap.Int64("course_id", stored.CourseID),
		zap.Time("scheduled_at", stored.ScheduledAt),
	)

	return &stored, nil
}

// Get retrieves an exam.
func (s *ExamService) Get(ctx context.Context, id int64) (*domain.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// ListByCourse returns the exams scheduled for a course.
func (s *ExamService) ListByCourse(ctx context.Context, courseID int64) ([]domain.Exam, error) {
	exams, err := s.exams.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// Update reschedules or retitles an exam.
func (s *ExamService) Update(ctx context.Context, id int64, input UpdateExamInput) (*domain.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("exam title is required")
		}
		exam.Title = title
	}
	if input.ScheduledAt != nil {
		exam.ScheduledAt = *input.ScheduledAt
	}
	if input.TotalMarks != nil {
		if *input.TotalMarks <= 0 {
			return nil, fmt.Errorf("total marks must be positive")
		}
		exam.TotalMarks = *input.TotalMarks
	}

	if err := s.exams.Update(ctx, *exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}

	s.logger.Info("exam updated", zap.Int64("exam_id", exam.ID))

	return exam, nil
}

// Submit stores a student's answer to an exam.
func (s *ExamService) Submit(ctx context.Context, input SubmitInput) (*domain.Submission, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("submission content is required")
	}

	if _, err := s.exams.GetByID(ctx, input.ExamID); err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	submission := domain.Submission{
		ExamID:      input.ExamID,
		StudentID:   input.StudentID,
		Content:     input.Content,
		SubmittedAt: s.now().UTC(),
	}

	stored, err := s.exams.AddSubmission(ctx, submission)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("add submission: %w", err)
	}

	s.logger.Info("exam submission received",
		zap.Int64("submission_id", stored.ID),
		zap.Int64("exam_id", stored.ExamID),
		zap.Int64("student_id", stored.StudentID),
	)

	return &stored, nil
}

// GetSubmission retrieves a single submission.
func (s *ExamService) GetSubmission(ctx context.Context, id int64) (*domain.Submission, error) {
	submission, err := s.exams.GetSubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return submission, nil
}

// ListSubmissions returns every submission for an exam.
func (s *ExamService) ListSubmissions(ctx context.Context, examID int64) ([]domain.Submission, error) {
	submissions, err := s.exams.ListSubmissions(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// Grade records the obtained marks on a submission. Marks are bounded by the
// exam total; regrading overwrites the earlier result.
func (s *ExamService) Grade(ctx context.Context, actor domain.Identity, input GradeInput) (*domain.Submission, error) {
	submission, err := s.exams.GetSubmission(ctx, input.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}

	exam, err := s.exams.GetByID(ctx, submission.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if input.ObtainedMarks < 0 || input.ObtainedMarks > exam.TotalMarks {
		return nil, fmt.Errorf("%w: %d of %d", ErrMarksOutOfRange, input.ObtainedMarks, exam.TotalMarks)
	}

	gradedAt := s.now().UTC()
	if err := s.exams.GradeSubmission(ctx, submission.ID, input.ObtainedMarks, actor.ID, gradedAt); err != nil {
		return nil, fmt.Errorf("grade submission: %w", err)
	}

	marks := input.ObtainedMarks
	submission.ObtainedMarks = &marks
	submission.GradedBy = &actor.ID
	submission.GradedAt = &gradedAt

	s.logger.Info("submission graded",
		zap.Int64("submission_id", submission.ID),
		zap.Int64("exam_id", submission.ExamID),
		zap.Int("obtained_marks", marks),
		zap.Int64("graded_by", actor.ID),
	)

	return submission, nil
}
