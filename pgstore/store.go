package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cdi-dev/sessionauth"
)

// Store is a PostgreSQL-backed credential store. It satisfies
// sessionauth.UserStore and additionally offers the user CRUD operations the
// HTTP surface exposes.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps pool. The pool must stay open for the store's lifetime.
func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pgstore: nil pool")
	}
	return &Store{pool: pool}, nil
}

// CreateSchema creates the users table if it does not exist. Intended for
// examples and tests; production deployments run migrations instead.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id       TEXT PRIMARY KEY,
			email    TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			fullname TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("pgstore: create schema: %w", err)
	}
	return nil
}

// FindByEmail looks a user up by normalized email.
func (s *Store) FindByEmail(ctx context.Context, email string) (sessionauth.UserRecord, error) {
	return s.findOne(ctx,
		`SELECT id, email, password, fullname FROM users WHERE email = $1`,
		normalizeEmail(email))
}

// FindByID looks a user up by id.
func (s *Store) FindByID(ctx context.Context, id string) (sessionauth.UserRecord, error) {
	return s.findOne(ctx,
		`SELECT id, email, password, fullname FROM users WHERE id = $1`, id)
}

func (s *Store) findOne(ctx context.Context, query string, arg string) (sessionauth.UserRecord, error) {
	var rec sessionauth.UserRecord
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&rec.ID, &rec.Email, &rec.Password, &rec.Fullname)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sessionauth.UserRecord{}, sessionauth.ErrUserNotFound
		}
		return sessionauth.UserRecord{}, fmt.Errorf("pgstore: query user: %w", err)
	}
	return rec, nil
}

// UpdatePassword sets the digest to newDigest only where the stored digest
// equals currentDigest. The conditional WHERE clause is what makes the
// current-password check and the write a single atomic step.
func (s *Store) UpdatePassword(ctx context.Context, userID, currentDigest, newDigest string) (bool, error) {
	ct, err := s.pool.Exec(ctx,
		`UPDATE users SET password = $3 WHERE id = $1 AND password = $2`,
		userID, currentDigest, newDigest)
	if err != nil {
		return false, fmt.Errorf("pgstore: update password: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// Create inserts a new user record. The password must already be a digest.
func (s *Store) Create(ctx context.Context, in sessionauth.CreateUserInput) (sessionauth.UserRecord, error) {
	rec := sessionauth.UserRecord{
		ID:       uuid.NewString(),
		Email:    normalizeEmail(in.Email),
		Password: in.Password,
		Fullname: in.Fullname,
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password, fullname) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Email, rec.Password, rec.Fullname)
	if err != nil {
		if isUniqueViolation(err) {
			return sessionauth.UserRecord{}, sessionauth.ErrEmailTaken
		}
		return sessionauth.UserRecord{}, fmt.Errorf("pgstore: insert user: %w", err)
	}
	return rec, nil
}

// List returns one page of users ordered by email. page is 1-based.
func (s *Store) List(ctx context.Context, page, size int) ([]sessionauth.UserRecord, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, password, fullname FROM users ORDER BY email LIMIT $1 OFFSET $2`,
		size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list users: %w", err)
	}
	defer rows.Close()

	users := make([]sessionauth.UserRecord, 0, size)
	for rows.Next() {
		var rec sessionauth.UserRecord
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Password, &rec.Fullname); err != nil {
			return nil, fmt.Errorf("pgstore: scan user: %w", err)
		}
		users = append(users, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: list users: %w", err)
	}
	return users, nil
}

// Update mutates profile fields of the record with id. Empty input fields are
// left unchanged.
func (s *Store) Update(ctx context.Context, id string, in sessionauth.UpdateUserInput) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET email    = CASE WHEN $2 = '' THEN email ELSE $2 END,
		     fullname = CASE WHEN $3 = '' THEN fullname ELSE $3 END
		 WHERE id = $1`,
		id, normalizeEmail(in.Email), in.Fullname)
	if err != nil {
		if isUniqueViolation(err) {
			return sessionauth.ErrEmailTaken
		}
		return fmt.Errorf("pgstore: update user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return sessionauth.ErrNoRecordUpdated
	}
	return nil
}

// Delete removes the record with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgstore: delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return sessionauth.ErrNoRecordDeleted
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
