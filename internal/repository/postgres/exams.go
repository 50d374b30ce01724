package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

// ExamRepository implements port.ExamRepository using PostgreSQL. Exams and
// their submissions share a repository because grading always touches both.
type ExamRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewExamRepository wires a PostgreSQL-backed exam store.
func NewExamRepository(exec pgExecutor) *ExamRepository {
	repo := &ExamRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var examColumns = []string{
	"id",
	"course_id",
	"title",
	"scheduled_at",
	"total_marks",
	"created_by",
	"created_at",
}

var submissionColumns = []string{
	"id",
	"exam_id",
	"student_id",
	"content",
	"submitted_at",
	"obtained_marks",
	"graded_by",
	"graded_at",
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam domain.Exam) (domain.Exam, error) {
	stmt, args, err := r.builder.
		Insert("cecos.exams").
		Columns("course_id", "title", "scheduled_at", "total_marks", "created_by", "created_at").
		Values(exam.CourseID, exam.Title, exam.ScheduledAt, exam.TotalMarks, exam.CreatedBy, exam.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Exam{}, fmt.Errorf("build insert exam sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&exam.ID); err != nil {
		return domain.Exam{}, classifyError("insert exam", err)
	}

	return exam, nil
}

// GetByID retrieves an exam.
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*domain.Exam, error) {
	stmt, args, err := r.builder.
		Select(examColumns...).
		From("cecos.exams").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select exam sql: %w", err)
	}

	var exam domain.Exam
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&exam.ID,
		&exam.CourseID,
		&exam.Title,
		&exam.ScheduledAt,
		&exam.TotalMarks,
		&exam.CreatedBy,
		&exam.CreatedAt,
	); err != nil {
		return nil, classifyError("scan exam", err)
	}

	return &exam, nil
}

// ListByCourse returns the exams scheduled for a course.
func (r *ExamRepository) ListByCourse(ctx context.Context, courseID int64) ([]domain.Exam, error) {
	stmt, args, err := r.builder.
		Select(examColumns...).
		From("cecos.exams").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("scheduled_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select exams sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select exams", err)
	}
	defer rows.Close()

	var exams []domain.Exam
	for rows.Next() {
		var exam domain.Exam
		if err := rows.Scan(
			&exam.ID,
			&exam.CourseID,
			&exam.Title,
			&exam.ScheduledAt,
			&exam.TotalMarks,
			&exam.CreatedBy,
			&exam.CreatedAt,
		); err != nil {
			return nil, classifyError("scan exam", err)
		}
		exams = append(exams, exam)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate exams", err)
	}

	return exams, nil
}

// Update replaces the mutable fields of an exam.
func (r *ExamRepository) Update(ctx context.Context, exam domain.Exam) error {
	stmt, args, err := r.builder.
		Update("cecos.exams").
		Set("title", exam.Title).
		Set("scheduled_at", exam.ScheduledAt).
		Set("total_marks", exam.TotalMarks).
		Where(squirrel.Eq{"id": exam.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update exam sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("update exam", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AddSubmission inserts a student's exam submission. A second submission for
// the same exam and student reports repository.ErrConflict.
func (r *ExamRepository) AddSubmission(ctx context.Context, submission domain.Submission) (domain.Submission, error) {
	stmt, args, err := r.builder.
		Insert("cecos.exam_submissions").
		Columns("exam_id", "student_id", "content", "submitted_at").
		Values(submission.ExamID, submission.StudentID, submission.Content, submission.SubmittedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Submission{}, fmt.Errorf("build insert submission sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&submission.ID); err != nil {
		return domain.Submission{}, classifyError("insert submission", err)
	}

	return submission, nil
}

// GetSubmission retrieves a single submission.
func (r *ExamRepository) GetSubmission(ctx context.Context, id int64) (*domain.Submission, error) {
	stmt, args, err := r.builder.
		Select(submissionColumns...).
		From("cecos.exam_submissions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select submission sql: %w", err)
	}

	return scanSubmission(r.exec.QueryRow(ctx, stmt, args...))
}

// ListSubmissions returns all submissions for an exam.
func (r *ExamRepository) ListSubmissions(ctx context.Context, examID int64) ([]domain.Submission, error) {
	stmt, args, err := r.builder.
		Select(submissionColumns...).
		From("cecos.exam_submissions").
		Where(squirrel.Eq{"exam_id": examID}).
		OrderBy("submitted_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select submissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select submissions", err)
	}
	defer rows.Close()

	var submissions []domain.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *submission)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate submissions", err)
	}

	return submissions, nil
}

// GradeSubmission records the obtained marks and grader on a submission.
func (r *ExamRepository) GradeSubmission(ctx context.Context, id int64, marks int, gradedBy int64, gradedAt time.Time) error {
	stmt, args, err := r.builder.
		Update("cecos.exam_submissions").
		Set("obtained_marks", marks).
		Set("graded_by", gradedBy).
		Set("graded_at", gradedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update submission sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("grade submission", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var (
		submission domain.Submission
		marks      sql.NullInt64
		gradedBy   sql.NullInt64
		gradedAt   *time.Time
	)

	if err := row.Scan(
		&submission.ID,
		&submission.ExamID,
		&submission.StudentID,
		&submission.Content,
		&submission.SubmittedAt,
		&marks,
		&gradedBy,
		&gradedAt,
	); err != nil {
		return nil, classifyError("scan submission", err)
	}

	if marks.Valid {
		value := int(marks.Int64)
		submission.ObtainedMarks = &value
	}
	if gradedBy.Valid {
		value := gradedBy.Int64
		submission.GradedBy = &value
	}
	submission.GradedAt = gradedAt

	return &submission, nil
}

var _ port.ExamRepository = (*ExamRepository)(nil)
