package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

func TestGrantRepositoryListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewGrantRepository(mock)

	grantedAt := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "user_id", "permission", "resource", "granted_by", "granted_at"}).
		AddRow(int64(1), int64(3), "grade", "submissions", int64(1), grantedAt).
		AddRow(int64(2), int64(3), "read", "privileges", int64(1), grantedAt.Add(time.Minute))

	mock.ExpectQuery(`SELECT .* FROM cecos\.privilege_grants`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	grants, err := repo.ListByUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(grants))
	}
	if grants[0].Permission != "grade" || grants[0].Resource != "submissions" {
		t.Fatalf("unexpected first grant: %+v", grants[0])
	}
	if !grants[1].GrantedAt.Equal(grantedAt.Add(time.Minute)) {
		t.Fatalf("unexpected granted_at: %v", grants[1].GrantedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantRepositoryListByUserUnavailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewGrantRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM cecos\.privilege_grants`).
		WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection failure"})

	if _, err := repo.ListByUser(context.Background(), 3); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantRepositoryAdd(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewGrantRepository(mock)

	grantedAt := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)
	grant := domain.Grant{
		UserID:     3,
		Permission: "grade",
		Resource:   "submissions",
		GrantedBy:  1,
		GrantedAt:  grantedAt,
	}

	mock.ExpectQuery(`INSERT INTO cecos\.privilege_grants`).
		WithArgs(grant.UserID, grant.Permission, grant.Resource, grant.GrantedBy, grant.GrantedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	stored, err := repo.Add(context.Background(), grant)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if stored.ID != 11 {
		t.Fatalf("expected assigned id 11, got %d", stored.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantRepositoryRemoveExact(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewGrantRepository(mock)

	// squirrel orders Eq map columns alphabetically.
	mock.ExpectExec(`DELETE FROM cecos\.privilege_grants`).
		WithArgs("grade", "submissions", int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	removed, err := repo.RemoveExact(context.Background(), 3, "grade", "submissions")
	if err != nil {
		t.Fatalf("RemoveExact returned error: %v", err)
	}
	if !removed {
		t.Fatal("expected removal to be reported")
	}

	mock.ExpectExec(`DELETE FROM cecos\.privilege_grants`).
		WithArgs("grade", "submissions", int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	removed, err = repo.RemoveExact(context.Background(), 3, "grade", "submissions")
	if err != nil {
		t.Fatalf("RemoveExact returned error: %v", err)
	}
	if removed {
		t.Fatal("expected no removal for missing grant")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
