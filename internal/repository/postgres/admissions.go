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

// AdmissionRepository implements port.AdmissionRepository using PostgreSQL.
type AdmissionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAdmissionRepository wires a PostgreSQL-backed application store.
func NewAdmissionRepository(exec pgExecutor) *AdmissionRepository {
	repo := &AdmissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var admissionColumns = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"phone",
	"program",
	"status",
	"decided_by",
	"decided_at",
	"applied_at",
}

// Create inserts a new admission application in pending state.
func (r *AdmissionRepository) Create(ctx context.Context, application domain.AdmissionApplication) (domain.AdmissionApplication, error) {
	stmt, args, err := r.builder.
		Insert("cecos.admission_applications").
		Columns("first_name", "last_name", "email", "phone", "program", "status", "applied_at").
		Values(application.FirstName, application.LastName, application.Email,
			nullable(application.Phone), application.Program,
			string(application.Status), application.AppliedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.AdmissionApplication{}, fmt.Errorf("build insert application sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&application.ID); err != nil {
		return domain.AdmissionApplication{}, classifyError("insert application", err)
	}

	return application, nil
}

// GetByID retrieves an application.
func (r *AdmissionRepository) GetByID(ctx context.Context, id int64) (*domain.AdmissionApplication, error) {
	stmt, args, err := r.builder.
		Select(admissionColumns...).
		From("cecos.admission_applications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select application sql: %w", err)
	}

	return scanApplication(r.exec.QueryRow(ctx, stmt, args...))
}

// List returns applications, optionally filtered by status.
func (r *AdmissionRepository) List(ctx context.Context, status domain.AdmissionStatus) ([]domain.AdmissionApplication, error) {
	query := r.builder.
		Select(admissionColumns...).
		From("cecos.admission_applications").
		OrderBy("applied_at ASC", "id ASC")

	if status != "" {
		query = query.Where(squirrel.Eq{"status": string(status)})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select applications sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select applications", err)
	}
	defer rows.Close()

	var applications []domain.AdmissionApplication
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, *application)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate applications", err)
	}

	return applications, nil
}

// Decide moves a pending application into its final state. Deciding an
// already decided application reports repository.ErrConflict.
func (r *AdmissionRepository) Decide(ctx context.Context, id int64, status domain.AdmissionStatus, decidedBy int64, decidedAt time.Time) error {
	stmt, args, err := r.builder.
		Update("cecos.admission_applications").
		Set("status", string(status)).
		Set("decided_by", decidedBy).
		Set("decided_at", decidedAt).
		Where(squirrel.Eq{"id": id, "status": string(domain.AdmissionPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update application sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("decide application", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row does not exist or it is no longer pending.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrConflict
	}

	return nil
}

func scanApplication(row pgx.Row) (*domain.AdmissionApplication, error) {
	var (
		application domain.AdmissionApplication
		phone       sql.NullString
		status      string
		decidedBy   sql.NullInt64
		decidedAt   *time.Time
	)

	if err := row.Scan(
		&application.ID,
		&application.FirstName,
		&application.LastName,
		&application.Email,
		&phone,
		&application.Program,
		&status,
		&decidedBy,
		&decidedAt,
		&application.AppliedAt,
	); err != nil {
		return nil, classifyError("scan application", err)
	}

	application.Status = domain.AdmissionStatus(status)
	application.DecidedAt = decidedAt
	if phone.Valid {
		value := phone.String
		application.Phone = &value
	}
	if decidedBy.Valid {
		value := decidedBy.Int64
		application.DecidedBy = &value
	}

	return &application, nil
}

var _ port.AdmissionRepository = (*AdmissionRepository)(nil)
