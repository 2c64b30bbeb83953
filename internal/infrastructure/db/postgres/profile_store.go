package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.UserDirectory = (*ProfileStore)(nil)

// ProfileStore keeps the application profile (username, display name and
// role) of identities whose credentials live in the managed auth service.
// Rows are keyed by the managed identity id.
type ProfileStore struct {
	pool pool
}

// pool is the part of *pgxpool.Pool the store uses.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// NewProfileStore connects to databaseURL and applies migrations.
func NewProfileStore(ctx context.Context, databaseURL string) (*ProfileStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pgPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &ProfileStore{pool: pgPool}
	if err := s.migrate(ctx); err != nil {
		pgPool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *ProfileStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping reports whether the database is reachable.
func (s *ProfileStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *ProfileStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`ALTER TABLE user_profiles DROP CONSTRAINT IF EXISTS user_profiles_role_check;`,
		`ALTER TABLE user_profiles ADD CONSTRAINT user_profiles_role_check CHECK (role IN ('user', 'admin', 'superadmin'));`,
		`CREATE INDEX IF NOT EXISTS user_profiles_created_at_idx ON user_profiles (created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const profileColumns = `id, username, name, email, role, created_at, updated_at`

// Create inserts the profile for a freshly registered identity.
func (s *ProfileStore) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	const query = `
		INSERT INTO user_profiles (id, username, name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + profileColumns
	row := s.pool.QueryRow(ctx, query, u.ID, u.Username, u.Name, u.Email, string(u.Role))
	created, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return created, nil
}

func (s *ProfileStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`
	u, err := scanProfile(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return u, nil
}

func (s *ProfileStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE username = $1`
	u, err := scanProfile(s.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return u, nil
}

// UsernameTaken reports whether username already belongs to a profile.
func (s *ProfileStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_profiles WHERE username = $1)`, username).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return taken, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return users, nil
}

func (s *ProfileStore) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	query := `UPDATE user_profiles SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + profileColumns
	u, err := scanProfile(s.pool.QueryRow(ctx, query, id, string(role)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	return u, nil
}

// Delete removes the profile row. managed.Directory also removes the
// identity at the auth service.
func (s *ProfileStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &role, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = createdAt.UTC()
	u.UpdatedAt = updatedAt.UTC()
	return &u, nil
}
