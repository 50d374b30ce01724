package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

// EnrollmentRepository implements port.EnrollmentRepository using PostgreSQL.
type EnrollmentRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewEnrollmentRepository wires a PostgreSQL-backed enrollment store.
func NewEnrollmentRepository(exec pgExecutor) *EnrollmentRepository {
	repo := &EnrollmentRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var enrollmentColumns = []string{
	"id",
	"student_id",
	"course_id",
	"semester",
	"enrolled_at",
}

// Create inserts a new enrollment. A duplicate student/course/semester triple
// reports repository.ErrConflict via the unique constraint.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment domain.Enrollment) (domain.Enrollment, error) {
	stmt, args, err := r.builder.
		Insert("cecos.enrollments").
		Columns("student_id", "course_id", "semester", "enrolled_at").
		Values(enrollment.StudentID, enrollment.CourseID, enrollment.Semester, enrollment.EnrolledAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("build insert enrollment sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&enrollment.ID); err != nil {
		return domain.Enrollment{}, classifyError("insert enrollment", err)
	}

	return enrollment, nil
}

// GetByID retrieves an enrollment.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*domain.Enrollment, error) {
	stmt, args, err := r.builder.
		Select(enrollmentColumns...).
		From("cecos.enrollments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select enrollment sql: %w", err)
	}

	var enrollment domain.Enrollment
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseID,
		&enrollment.Semester,
		&enrollment.EnrolledAt,
	); err != nil {
		return nil, classifyError("scan enrollment", err)
	}

	return &enrollment, nil
}

// ListByStudent returns the student's enrollments.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]domain.Enrollment, error) {
	return r.list(ctx, squirrel.Eq{"student_id": studentID})
}

// ListByCourse returns the course roster.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]domain.Enrollment, error) {
	return r.list(ctx, squirrel.Eq{"course_id": courseID})
}

func (r *EnrollmentRepository) list(ctx context.Context, where squirrel.Eq) ([]domain.Enrollment, error) {
	stmt, args, err := r.builder.
		Select(enrollmentColumns...).
		From("cecos.enrollments").
		Where(where).
		OrderBy("enrolled_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select enrollments sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select enrollments", err)
	}
	defer rows.Close()

	var enrollments []domain.Enrollment
	for rows.Next() {
		var enrollment domain.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.StudentID,
			&enrollment.CourseID,
			&enrollment.Semester,
			&enrollment.EnrolledAt,
		); err != nil {
			return nil, classifyError("scan enrollment", err)
		}
		enrollments = append(enrollments, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate enrollments", err)
	}

	return enrollments, nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.
		Delete("cecos.enrollments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete enrollment sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("delete enrollment", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.EnrollmentRepository = (*EnrollmentRepository)(nil)
