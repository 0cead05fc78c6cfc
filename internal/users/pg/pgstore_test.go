package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/LeiMuu/UserManagementAPI/internal/users"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestCreateReturnsAssignedID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`insert into users`).
		WithArgs("Alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(7, "Alice", "alice@example.com"))

	u, err := s.Create(context.Background(), "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID != 7 || u.Name != "Alice" || u.Email != "alice@example.com" {
		t.Fatalf("unexpected record: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetMapsNoRowsToNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`select id, name, email from users where id`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	if _, err := s.Get(context.Background(), 42); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMapsNoRowsToNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`update users set name`).
		WithArgs(int64(42), "X", "x@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	if _, err := s.Update(context.Background(), 42, "X", "x@example.com"); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReportsMissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`delete from users where id`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Delete(context.Background(), 42); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectExec(`delete from users where id`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete existing: %v", err)
	}
}

func TestListScansAllRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`select id, name, email from users order by id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "User1", "user1@example.com").
			AddRow(2, "User2", "user2@example.com"))

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[1].Name != "User2" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestExists(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`select exists`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Exists(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
}

func TestSeedSkipsNonEmptyTable(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`select count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	if err := s.Seed(context.Background(), 20); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("seed should not insert into a populated table: %v", err)
	}
}
