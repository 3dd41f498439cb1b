package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"energy-advisor/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore persists sessions in PostgreSQL. Session state is stored as
// a single JSONB document; the row's stage column is denormalized for
// operator queries.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to PostgreSQL and applies embedded migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context) (string, error) {
	session := model.NewSession(uuid.NewString())

	state, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, stage, state, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.Stage, state, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return session.ID, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Session, error) {
	var state []byte
	err := s.db.QueryRowxContext(ctx, `SELECT state FROM sessions WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(state, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *PostgresStore) Update(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = time.Now()

	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET stage = $2, state = $3, updated_at = $4 WHERE id = $1`,
		session.ID, session.Stage, state, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
