package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

// CourseRepository implements port.CourseRepository using PostgreSQL.
type CourseRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCourseRepository wires a PostgreSQL-backed course catalog.
func NewCourseRepository(exec pgExecutor) *CourseRepository {
	repo := &CourseRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var courseColumns = []string{
	"id",
	"code",
	"title",
	"description",
	"department",
	"credit_hours",
	"faculty_id",
	"created_at",
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course domain.Course) (domain.Course, error) {
	stmt, args, err := r.builder.
		Insert("cecos.courses").
		Columns("code", "title", "description", "department", "credit_hours", "faculty_id", "created_at").
		Values(course.Code, course.Title, nullable(course.Description),
			course.Department, course.CreditHours, course.FacultyID, course.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Course{}, fmt.Errorf("build insert course sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&course.ID); err != nil {
		return domain.Course{}, classifyError("insert course", err)
	}

	return course, nil
}

// GetByID retrieves a course.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	stmt, args, err := r.builder.
		Select(courseColumns...).
		From("cecos.courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select course sql: %w", err)
	}

	return scanCourse(r.exec.QueryRow(ctx, stmt, args...))
}

// List returns courses, optionally filtered by department.
func (r *CourseRepository) List(ctx context.Context, department string) ([]domain.Course, error) {
	query := r.builder.
		Select(courseColumns...).
		From("cecos.courses").
		OrderBy("code ASC")

	if department != "" {
		query = query.Where(squirrel.Eq{"department": department})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select courses sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select courses", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate courses", err)
	}

	return courses, nil
}

// Update replaces the mutable fields of a course.
func (r *CourseRepository) Update(ctx context.Context, course domain.Course) error {
	stmt, args, err := r.builder.
		Update("cecos.courses").
		Set("title", course.Title).
		Set("description", nullable(course.Description)).
		Set("department", course.Department).
		Set("credit_hours", course.CreditHours).
		Set("faculty_id", course.FacultyID).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update course sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("update course", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.
		Delete("cecos.courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete course sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("delete course", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var (
		course      domain.Course
		description sql.NullString
		facultyID   sql.NullInt64
	)

	if err := row.Scan(
		&course.ID,
		&course.Code,
		&course.Title,
		&description,
		&course.Department,
		&course.CreditHours,
		&facultyID,
		&course.CreatedAt,
	); err != nil {
		return nil, classifyError("scan course", err)
	}

	if description.Valid {
		value := description.String
		course.Description = &value
	}
	if facultyID.Valid {
		value := facultyID.Int64
		course.FacultyID = &value
	}

	return &course, nil
}

var _ port.CourseRepository = (*CourseRepository)(nil)
