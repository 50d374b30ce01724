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

type examRepoMock struct {
	exams          map[int64]domain.Exam
	submissions    map[int64]domain.Submission
	nextExamID     int64
	nextSubmission int64
}

func (m *examRepoMock) Create(_ context.Context, exam domain.Exam) (domain.Exam, error) {
	if m.exams == nil {
		m.exams = make(map[int64]domain.Exam)
	}
	m.nextExamID++
	exam.ID = m.nextExamID
	m.exams[exam.ID] = exam
	return exam, nil
}

func (m *examRepoMock) GetByID(_ context.Context, id int64) (*domain.Exam, error) {
	exam, ok := m.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &exam, nil
}

func (m *examRepoMock) ListByCourse(_ context.Context, courseID int64) ([]domain.Exam, error) {
	var out []domain.Exam
	for _, exam := range m.exams {
		if exam.CourseID == courseID {
			out = append(out, exam)
		}
	}
	return out, nil
}

func (m *examRepoMock) Update(_ context.Context, exam domain.Exam) error {
	if _, ok := m.exams[exam.ID]; !ok {
		return repository.ErrNotFound
	}
	m.exams[exam.ID] = exam
	return nil
}

func (m *examRepoMock) AddSubmission(_ context.Context, submission domain.Submission) (domain.Submission, error) {
	if m.submissions == nil {
		m.submissions = make(map[int64]domain.Submission)
	}
	for _, existing := range m.submissions {
		if existing.ExamID == submission.ExamID && existing.StudentID == submission.StudentID {
			return domain.Submission{}, repository.ErrConflict
		}
	}
	m.nextSubmission++
	submission.ID = m.nextSubmission
	m.submissions[submission.ID] = submission
	return submission, nil
}

func (m *examRepoMock) GetSubmission(_ context.Context, id int64) (*domain.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &submission, nil
}

func (m *examRepoMock) ListSubmissions(_ context.Context, examID int64) ([]domain.Submission, error) {
	var out []domain.Submission
	for _, submission := range m.submissions {
		if submission.ExamID == examID {
			out = append(out, submission)
		}
	}
	return out, nil
}

func (m *examRepoMock) GradeSubmission(_ context.Context, id int64, marks int, gradedBy int64, gradedAt time.Time) error {
	submission, ok := m.submissions[id]
	if !ok {
		return repository.ErrNotFound
	}
	submission.ObtainedMarks = &marks
	submission.GradedBy = &gradedBy
	submission.GradedAt = &gradedAt
	m.submissions[id] = submission
	return nil
}

func examFaculty() domain.Identity {
	return domain.Identity{ID: 5, Username: "fmalik", Role: domain.RoleFaculty}
}

func scheduleExam(t *testing.T, svc *ExamService) *domain.Exam {
	t.Helper()
	exam, err := svc.Create(context.Background(), examFaculty(), CreateExamInput{
		CourseID:    1,
		Title:       "Midterm",
		ScheduledAt: time.Date(2026, time.April, 10, 9, 0, 0, 0, time.UTC),
		TotalMarks:  100,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return exam
}

func TestExamServiceUpdate(t *testing.T) {
	svc := NewExamService(&examRepoMock{}, zap.NewNop())
	exam := scheduleExam(t, svc)

	title := "Midterm (rescheduled)"
	when := time.Date(2026, time.April, 17, 9, 0, 0, 0, time.UTC)
	updated, err := svc.Update(context.Background(), exam.ID, UpdateExamInput{Title: &title, ScheduledAt: &when})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != title || !updated.ScheduledAt.Equal(when) {
		t.Fatalf("unexpected exam after update: %+v", updated)
	}
	if updated.TotalMarks != 100 {
		t.Fatal("expected untouched fields to survive a partial update")
	}

	zero := 0
	if _, err := svc.Update(context.Background(), exam.ID, UpdateExamInput{TotalMarks: &zero}); err == nil {
		t.Fatal("expected error for non-positive total marks")
	}

	if _, err := svc.Update(context.Background(), 404, UpdateExamInput{Title: &title}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExamServiceSubmitOncePerStudent(t *testing.T) {
	svc := NewExamService(&examRepoMock{}, zap.NewNop())
	exam := scheduleExam(t, svc)

	input := SubmitInput{ExamID: exam.ID, StudentID: 3, Content: "answers"}
	if _, err := svc.Submit(context.Background(), input); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if _, err := svc.Submit(context.Background(), input); !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
}

func TestExamServiceSubmitUnknownExam(t *testing.T) {
	svc := NewExamService(&examRepoMock{}, zap.NewNop())

	if _, err := svc.Submit(context.Background(), SubmitInput{ExamID: 404, StudentID: 3, Content: "answers"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExamServiceGradeBounds(t *testing.T) {
	svc := NewExamService(&examRepoMock{}, zap.NewNop())
	exam := scheduleExam(t, svc)

	submission, err := svc.Submit(context.Background(), SubmitInput{ExamID: exam.ID, StudentID: 3, Content: "answers"})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	for _, marks := range []int{-1, 101} {
		if _, err := svc.Grade(context.Background(), examFaculty(), GradeInput{SubmissionID: submission.ID, ObtainedMarks: marks}); !errors.Is(err, ErrMarksOutOfRange) {
			t.Fatalf("marks %d: expected ErrMarksOutOfRange, got %v", marks, err)
		}
	}

	graded, err := svc.Grade(context.Background(), examFaculty(), GradeInput{SubmissionID: submission.ID, ObtainedMarks: 87})
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if graded.ObtainedMarks == nil || *graded.ObtainedMarks != 87 {
		t.Fatal("expected obtained marks recorded")
	}
	if graded.GradedBy == nil || *graded.GradedBy != 5 {
		t.Fatal("expected grading attributed to the actor")
	}

	// Regrading overwrites the earlier result.
	regraded, err := svc.Grade(context.Background(), examFaculty(), GradeInput{SubmissionID: submission.ID, ObtainedMarks: 90})
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if regraded.ObtainedMarks == nil || *regraded.ObtainedMarks != 90 {
		t.Fatal("expected regrade to overwrite marks")
	}
}
