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

// StudentRepository implements port.StudentRepository using PostgreSQL.
type StudentRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewStudentRepository wires a PostgreSQL-backed student record store.
func NewStudentRepository(exec pgExecutor) *StudentRepository {
	repo := &StudentRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var studentColumns = []string{
	"id",
	"user_id",
	"ccl_id",
	"first_name",
	"last_name",
	"email",
	"phone",
	"department",
	"semester",
	"is_active",
	"created_at",
	"updated_at",
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student domain.Student) (domain.Student, error) {
	stmt, args, err := r.builder.
		Insert("cecos.students").
		Columns("user_id", "ccl_id", "first_name", "last_name", "email", "phone",
			"department", "semester", "is_active", "created_at", "updated_at").
		Values(student.UserID, student.CCLID, student.FirstName, student.LastName,
			nullable(student.Email), nullable(student.Phone),
			student.Department, student.Semester, student.IsActive,
			student.CreatedAt, student.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Student{}, fmt.Errorf("build insert student sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&student.ID); err != nil {
		return domain.Student{}, classifyError("insert student", err)
	}

	return student, nil
}

// GetByID retrieves a student record.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	stmt, args, err := r.builder.
		Select(studentColumns...).
		From("cecos.students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select student sql: %w", err)
	}

	student, err := scanStudent(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}
	return student, nil
}

// List returns student records matching the filter.
func (r *StudentRepository) List(ctx context.Context, filter port.StudentFilter) ([]domain.Student, error) {
	query := r.builder.
		Select(studentColumns...).
		From("cecos.students").
		OrderBy("id ASC")

	if filter.Department != "" {
		query = query.Where(squirrel.Eq{"department": filter.Department})
	}
	if filter.Semester > 0 {
		query = query.Where(squirrel.Eq{"semester": filter.Semester})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select students sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select students", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *student)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate students", err)
	}

	return students, nil
}

// Update replaces the mutable fields of a student record.
func (r *StudentRepository) Update(ctx context.Context, student domain.Student) error {
	stmt, args, err := r.builder.
		Update("cecos.students").
		Set("first_name", student.FirstName).
		Set("last_name", student.LastName).
		Set("email", nullable(student.Email)).
		Set("phone", nullable(student.Phone)).
		Set("department", student.Department).
		Set("semester", student.Semester).
		Set("updated_at", student.UpdatedAt).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update student sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("update student", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetActive toggles the student's active flag.
func (r *StudentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	stmt, args, err := r.builder.
		Update("cecos.students").
		Set("is_active", active).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update student sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("update student", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var (
		student domain.Student
		email   sql.NullString
		phone   sql.NullString
	)

	if err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.CCLID,
		&student.FirstName,
		&student.LastName,
		&email,
		&phone,
		&student.Department,
		&student.Semester,
		&student.IsActive,
		&student.CreatedAt,
		&student.UpdatedAt,
	); err != nil {
		return nil, classifyError("scan student", err)
	}

	if email.Valid {
		value := email.String
		student.Email = &value
	}
	if phone.Valid {
		value := phone.String
		student.Phone = &value
	}

	return &student, nil
}

// nullable maps empty optional strings onto SQL NULL.
func nullable(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

var _ port.StudentRepository = (*StudentRepository)(nil)
