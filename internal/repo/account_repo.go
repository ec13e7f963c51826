// Package repo contains the persistence operations for accounts, books and
// loans. All SQL is explicit; repositories accept a db.Querier so the same
// code runs against the pooled handle or inside a transaction.
package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
)

type AccountRepo struct {
	q db.Querier
}

// NewAccountRepo returns an AccountRepo backed by q. q can be a *db.DB or a
// *db.Tx.
func NewAccountRepo(q db.Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

const (
	sqlInsertAccount = `
		INSERT INTO accounts (name, email, password_hash, staff_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	sqlSelectAccount = `
		SELECT id, name, email, password_hash, staff_id, created_at, updated_at
		FROM   accounts`

	sqlAccountByID = sqlSelectAccount + `
		WHERE  id = ?`

	sqlAccountByEmail = sqlSelectAccount + `
		WHERE  email = ?`

	sqlLibrarianByEmail = sqlSelectAccount + `
		WHERE  email = ? AND staff_id IS NOT NULL`
)

// Insert creates an account and returns the persisted record with the
// database-assigned id.
func (r *AccountRepo) Insert(ctx context.Context, params models.CreateAccountParams) (*models.Account, error) {
	now := time.Now().UTC()
	res, err := r.q.Exec(ctx, sqlInsertAccount,
		params.Name, params.Email, params.PasswordHash, nullString(params.StaffID), now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "repo/account: last insert id")
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a single account by primary key, or db.ErrNotFound.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return scanAccount(r.q.QueryRow(ctx, sqlAccountByID, id))
}

// GetByEmail looks up an account by its unique email, or db.ErrNotFound.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return scanAccount(r.q.QueryRow(ctx, sqlAccountByEmail, email))
}

// GetLibrarianByEmail looks up an account by email constrained to rows that
// carry a staff identifier.
func (r *AccountRepo) GetLibrarianByEmail(ctx context.Context, email string) (*models.Account, error) {
	return scanAccount(r.q.QueryRow(ctx, sqlLibrarianByEmail, email))
}

func scanAccount(row *db.Row) (*models.Account, error) {
	a := &models.Account{}
	var staffID sql.NullString
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &staffID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "repo/account")
	}
	if staffID.Valid {
		a.StaffID = &staffID.String
	}
	return a, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
