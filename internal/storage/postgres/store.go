package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ihadi/timetrack-be/internal/models"
	"github.com/ihadi/timetrack-be/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore  = (*Store)(nil)
	_ storage.EntryStore = (*Store)(nil)
)

// uniqueViolation is the Postgres error code for unique constraint breaks.
const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool through the same interface.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides Postgres-backed persistence for technicians and time entries.
type Store struct {
	db   DB
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewStore connects a pool to the database and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := newStore(pool)
	s.pool = pool
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// NewWithDB builds a store over an existing connection-like object. No
// migrations are run.
func NewWithDB(db DB) *Store {
	return newStore(db)
}

func newStore(db DB) *Store {
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS time_entries (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			supported_person TEXT NOT NULL,
			supported_person_country TEXT NOT NULL,
			working_language TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			work_type TEXT NOT NULL,
			description TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS time_entries_user_id_idx ON time_entries (user_id);`,
		`CREATE INDEX IF NOT EXISTS time_entries_created_at_idx ON time_entries (created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new technician row.
func (s *Store) CreateUser(ctx context.Context, tech models.Technician) (models.Technician, error) {
	query, args, err := s.sb.Insert("users").
		Columns("email", "name", "password_hash").
		Values(tech.Email, tech.Name, tech.PasswordHash).
		Suffix("RETURNING id, email, name, password_hash, created_at").
		ToSql()
	if err != nil {
		return models.Technician{}, err
	}

	created, err := scanTechnician(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Technician{}, storage.ErrAlreadyExists
		}
		return models.Technician{}, err
	}
	return created, nil
}

// FindByEmail fetches a technician by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.Technician, error) {
	query, args, err := s.sb.Select("id", "email", "name", "password_hash", "created_at").
		From("users").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return models.Technician{}, err
	}
	return scanTechnician(s.db.QueryRow(ctx, query, args...))
}

// FindByID fetches a technician by id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.Technician, error) {
	query, args, err := s.sb.Select("id", "email", "name", "password_hash", "created_at").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Technician{}, err
	}
	return scanTechnician(s.db.QueryRow(ctx, query, args...))
}

// UpdateUser replaces the technician's mutable fields.
func (s *Store) UpdateUser(ctx context.Context, tech models.Technician) (models.Technician, error) {
	query, args, err := s.sb.Update("users").
		Set("email", tech.Email).
		Set("name", tech.Name).
		Set("password_hash", tech.PasswordHash).
		Where(sq.Eq{"id": tech.ID}).
		Suffix("RETURNING id, email, name, password_hash, created_at").
		ToSql()
	if err != nil {
		return models.Technician{}, err
	}

	updated, err := scanTechnician(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Technician{}, storage.ErrAlreadyExists
		}
		return models.Technician{}, err
	}
	return updated, nil
}

func scanTechnician(row pgx.Row) (models.Technician, error) {
	var tech models.Technician
	err := row.Scan(&tech.ID, &tech.Email, &tech.Name, &tech.PasswordHash, &tech.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Technician{}, storage.ErrNotFound
		}
		return models.Technician{}, err
	}
	return tech, nil
}
