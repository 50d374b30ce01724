package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed account directory.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"id",
	"username",
	"ccl_id",
	"email",
	"password_hash",
	"role",
	"is_active",
	"created_at",
	"last_login",
}

// Create inserts a new account row and returns it with the assigned identifier.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	var emailValue any
	if user.Email != nil && *user.Email != "" {
		emailValue = *user.Email
	}

	stmt, args, err := r.builder.
		Insert("cecos.users").
		Columns("username", "ccl_id", "email", "password_hash", "role", "is_active", "created_at").
		Values(user.Username, user.CCLID, emailValue, user.PasswordHash, string(user.Role), user.IsActive, user.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build insert user sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&user.ID); err != nil {
		return domain.User{}, classifyError("insert user", err)
	}

	return user, nil
}

// GetByID retrieves an account by numeric identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("cecos.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByIdentifier resolves a username or CCL ID to an account.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("cecos.users").
		Where(squirrel.Or{
			squirrel.Eq{"username": identifier},
			squirrel.Eq{"ccl_id": identifier},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// SetActive toggles the account's active flag.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	stmt, args, err := r.builder.
		Update("cecos.users").
		Set("is_active", active).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// RecordLogin stamps the last successful login time.
func (r *UserRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	stmt, args, err := r.builder.
		Update("cecos.users").
		Set("last_login", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return classifyError("record login", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		email     sql.NullString
		role      string
		lastLogin *time.Time
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.CCLID,
		&email,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.CreatedAt,
		&lastLogin,
	); err != nil {
		return nil, classifyError("scan user", err)
	}

	user.Role = domain.Role(role)
	user.LastLogin = lastLogin
	if email.Valid {
		value := email.String
		user.Email = &value
	}

	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
