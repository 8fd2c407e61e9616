package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"registro/internal/contact/models"
	"registro/pkg/platform/sentinel"
)

// PostgresStore persists contacts in a PostgreSQL table named after the
// configured table name.
type PostgresStore struct {
	db    *sql.DB
	table string // quoted identifier

	insertSQL string
	countSQL  string
}

func NewPostgres(db *sql.DB, table string) *PostgresStore {
	quoted := pgx.Identifier{table}.Sanitize()
	return &PostgresStore{
		db:    db,
		table: quoted,
		insertSQL: `INSERT INTO ` + quoted + ` (id, names, surname, email, phone, interest, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		countSQL: `SELECT COUNT(*) FROM ` + quoted,
	}
}

// EnsureSchema creates the contact table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		id         UUID PRIMARY KEY,
		names      TEXT NOT NULL,
		surname    TEXT NOT NULL,
		email      TEXT NOT NULL,
		phone      TEXT NOT NULL,
		interest   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create contact table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, contact *models.Contact) error {
	_, err := s.db.ExecContext(ctx, s.insertSQL,
		contact.ID,
		contact.Names,
		contact.Surname,
		contact.Email,
		contact.Phone,
		contact.Interest,
		contact.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contact %s: %w", contact.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
