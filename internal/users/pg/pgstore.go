// Package pg is the Postgres-backed users.Store, selected at startup when
// PG_DSN is set. The in-memory store remains the default.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/LeiMuu/UserManagementAPI/internal/users"
)

const schema = `
create table if not exists users (
	id    bigint generated always as identity primary key,
	name  text not null,
	email text not null
)`

type Store struct {
	db *sql.DB
}

var _ users.Store = (*Store)(nil)

// Open connects via the pgx stdlib driver with tuned pool defaults.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle. Used by tests.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// EnsureSchema creates the users table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) Create(ctx context.Context, name, email string) (users.User, error) {
	var u users.User
	err := s.db.QueryRowContext(ctx,
		`insert into users(name, email) values($1, $2) returning id, name, email`,
		name, email,
	).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (s *Store) Get(ctx context.Context, id int64) (users.User, error) {
	var u users.User
	err := s.db.QueryRowContext(ctx,
		`select id, name, email from users where id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (s *Store) List(ctx context.Context) ([]users.User, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name, email from users order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id int64, name, email string) (users.User, error) {
	var u users.User
	err := s.db.QueryRowContext(ctx,
		`update users set name=$2, email=$3 where id=$1 returning id, name, email`,
		id, name, email,
	).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from users where id=$1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Seed inserts n synthetic users when the table is empty, mirroring the
// in-memory store's startup data set.
func (s *Store) Seed(ctx context.Context, n int) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `select count(*) from users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		insert into users(name, email)
		select 'User' || i, 'user' || i || '@example.com'
		from generate_series(1, $1) as i
	`, n)
	return err
}
