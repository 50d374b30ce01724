package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
)

// AttendanceRepository implements port.AttendanceRepository using PostgreSQL.
type AttendanceRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAttendanceRepository wires a PostgreSQL-backed attendance store.
func NewAttendanceRepository(exec pgExecutor) *AttendanceRepository {
	repo := &AttendanceRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Record upserts the attendance entry for an enrollment and date. Marking the
// same day twice replaces the earlier status.
func (r *AttendanceRepository) Record(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	stmt, args, err := r.builder.
		Insert("cecos.attendance_records").
		Columns("enrollment_id", "date", "status", "marked_by", "marked_at").
		Values(record.EnrollmentID, record.Date, string(record.Status), record.MarkedBy, record.MarkedAt).
		Suffix("ON CONFLICT (enrollment_id, date) DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, marked_at = EXCLUDED.marked_at").
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("build insert attendance sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&record.ID); err != nil {
		return domain.AttendanceRecord{}, classifyError("insert attendance", err)
	}

	return record, nil
}

// ListByEnrollment returns attendance entries inside the date range, oldest
// first. Zero bounds disable the corresponding limit.
func (r *AttendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID int64, from, to time.Time) ([]domain.AttendanceRecord, error) {
	query := r.builder.
		Select("id", "enrollment_id", "date", "status", "marked_by", "marked_at").
		From("cecos.attendance_records").
		Where(squirrel.Eq{"enrollment_id": enrollmentID}).
		OrderBy("date ASC")

	if !from.IsZero() {
		query = query.Where(squirrel.GtOrEq{"date": from})
	}
	if !to.IsZero() {
		query = query.Where(squirrel.LtOrEq{"date": to})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select attendance sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select attendance", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var (
			record domain.AttendanceRecord
			status string
		)
		if err := rows.Scan(
			&record.ID,
			&record.EnrollmentID,
			&record.Date,
			&status,
			&record.MarkedBy,
			&record.MarkedAt,
		); err != nil {
			return nil, classifyError("scan attendance", err)
		}
		record.Status = domain.AttendanceStatus(status)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate attendance", err)
	}

	return records, nil
}

var _ port.AttendanceRepository = (*AttendanceRepository)(nil)
