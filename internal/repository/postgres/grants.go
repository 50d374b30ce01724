package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
)

// GrantRepository implements port.GrantRepository using PostgreSQL. Every read
// goes straight to the table; there is deliberately no cache in front of it.
type GrantRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewGrantRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewGrantRepository(exec pgExecutor) *GrantRepository {
	return &GrantRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByUser returns every current grant for the user, ordered by creation.
func (r *GrantRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Grant, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "permission", "resource", "granted_by", "granted_at").
		From("cecos.privilege_grants").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("granted_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select grants sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("select grants", err)
	}
	defer rows.Close()

	var grants []domain.Grant
	for rows.Next() {
		var grant domain.Grant
		if err := rows.Scan(
			&grant.ID,
			&grant.UserID,
			&grant.Permission,
			&grant.Resource,
			&grant.GrantedBy,
			&grant.GrantedAt,
		); err != nil {
			return nil, classifyError("scan grant", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate grants", err)
	}

	return grants, nil
}

// Add persists a new grant row and returns it with the assigned identifier.
func (r *GrantRepository) Add(ctx context.Context, grant domain.Grant) (domain.Grant, error) {
	stmt, args, err := r.builder.
		Insert("cecos.privilege_grants").
		Columns("user_id", "permission", "resource", "granted_by", "granted_at").
		Values(grant.UserID, grant.Permission, grant.Resource, grant.GrantedBy, grant.GrantedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Grant{}, fmt.Errorf("build insert grant sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&grant.ID); err != nil {
		return domain.Grant{}, classifyError("insert grant", err)
	}

	return grant, nil
}

// RemoveExact deletes all rows matching the user/permission/resource triple
// and reports whether anything was removed.
func (r *GrantRepository) RemoveExact(ctx context.Context, userID int64, permission, resource string) (bool, error) {
	stmt, args, err := r.builder.
		Delete("cecos.privilege_grants").
		Where(squirrel.Eq{
			"user_id":    userID,
			"permission": permission,
			"resource":   resource,
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete grant sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, classifyError("delete grant", err)
	}

	return tag.RowsAffected() > 0, nil
}

var _ port.GrantRepository = (*GrantRepository)(nil)
