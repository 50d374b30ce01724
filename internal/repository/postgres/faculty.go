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

// FacultyRepository implements port.FacultyRepository using PostgreSQL.
type FacultyRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewFacultyRepository wires a PostgreSQL-backed faculty record store.
func NewFacultyRepository(exec pgExecutor) *FacultyRepository {
	repo := &FacultyRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var facultyColumns = []string{
	"id",
	"user_id",
	"ccl_id",
	"first_name",
	"last_name",
	"email",
	"department",
	"designation",
	"is_active",
	"created_at",
}

// Create inserts a new faculty record.
func (r *FacultyRepository) Create(ctx context.Context, member domain.FacultyMember) (domain.FacultyMember, error) {
	stmt, args, err := r.builder.
		Insert("cecos.faculty").
		Columns("user_id", "ccl_id", "first_name", "last_name", "email",
			"department", "designation", "is_active", "created_at").
		Values(member.UserID, member.CCLID, member.FirstName, member.LastName,
			nullable(member.Email), member.Department, member.Designation,
			member.IsActive, member.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.FacultyMember{}, fmt.Errorf("build insert faculty sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&member.ID); err != nil {
		return domain.FacultyMember{}, classifyError("insert faculty", err)
	}

	return member, nil
}

// GetByID retrieves a faculty record.
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*domain.FacultyMember, error) {
	stmt, args, err := r.builder.
		Select(facultyColumns...).
		From("cecos.faculty").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select faculty sql: %w", err)
	}

	return scanFacultyMember(r.exec.QueryRow(ctx, stmt, args...))
}

// List returns faculty records, optionally filtered by department.
func (r *FacultyRepository) List(ctx context.Context, department string) ([]domain.FacultyMember, error) {
	query := r.builder.
		Select(facultyColumns...).
		From("cecos.faculty").
		OrderBy("id ASC")

	if department != "" {
		query = query.Where(squirrel.Eq{"department": department})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select faculty sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select faculty", err)
	}
	defer rows.Close()

	var members []domain.FacultyMember
	for rows.Next() {
		member, err := scanFacultyMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate faculty", err)
	}

	return members, nil
}

// Update replaces the mutable fields of a faculty record.
func (r *FacultyRepository) Update(ctx context.Context, member domain.FacultyMember) error {
	stmt, args, err := r.builder.
		Update("cecos.faculty").
		Set("first_name", member.FirstName).
		Set("last_name", member.LastName).
		Set("email", nullable(member.Email)).
		Set("department", member.Department).
		Set("designation", member.Designation).
		Set("is_active", member.IsActive).
		Where(squirrel.Eq{"id": member.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update faculty sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("update faculty", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanFacultyMember(row pgx.Row) (*domain.FacultyMember, error) {
	var (
		member domain.FacultyMember
		email  sql.NullString
	)

	if err := row.Scan(
		&member.ID,
		&member.UserID,
		&member.CCLID,
		&member.FirstName,
		&member.LastName,
		&email,
		&member.Department,
		&member.Designation,
		&member.IsActive,
		&member.CreatedAt,
	); err != nil {
		return nil, classifyError("scan faculty", err)
	}

	if email.Valid {
		value := email.String
		member.Email = &value
	}

	return &member, nil
}

var _ port.FacultyRepository = (*FacultyRepository)(nil)
