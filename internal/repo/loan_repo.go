package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
)

type LoanRepo struct {
	q db.Querier
}

func NewLoanRepo(q db.Querier) *LoanRepo {
	return &LoanRepo{q: q}
}

const (
	sqlInsertLoan = `
		INSERT INTO loans (due_date, renewals, account_id, book_id, created_at)
		VALUES (?, 0, ?, ?, ?)`

	sqlLoanByID = `
		SELECT id, due_date, renewals, account_id, book_id, created_at
		FROM   loans
		WHERE  id = ?`

	sqlDeleteLoan = `
		DELETE FROM loans WHERE id = ?`

	// The renewals guard keeps the cap intact even when two renew requests
	// race on the same loan.
	sqlRenewLoan = `
		UPDATE loans
		SET    renewals = renewals + 1, due_date = ?
		WHERE  id = ? AND renewals < ?`

	sqlLoansByAccount = `
		SELECT l.id, l.due_date, l.renewals, l.account_id, l.book_id, l.created_at,
		       b.id, b.title, b.author, b.quantity, b.publisher, b.subject, b.age_rating, b.image, b.created_at, b.updated_at
		FROM   loans l
		JOIN   books b ON b.id = l.book_id
		WHERE  l.account_id = ?
		ORDER  BY l.id`

	sqlListLoans = `
		SELECT l.id, l.due_date, l.renewals, l.account_id, l.book_id, l.created_at,
		       a.id, a.name, a.email, a.staff_id, a.created_at, a.updated_at,
		       b.id, b.title, b.author, b.quantity, b.publisher, b.subject, b.age_rating, b.image, b.created_at, b.updated_at
		FROM   loans l
		JOIN   accounts a ON a.id = l.account_id
		JOIN   books b ON b.id = l.book_id
		ORDER  BY l.id`
)

// Insert records a new loan with zero renewals.
func (r *LoanRepo) Insert(ctx context.Context, accountID, bookID int64, dueDate time.Time) (*models.Loan, error) {
	res, err := r.q.Exec(ctx, sqlInsertLoan, dueDate, accountID, bookID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "repo/loan: last insert id")
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a single loan by primary key, or db.ErrNotFound.
func (r *LoanRepo) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	l := &models.Loan{}
	err := r.q.QueryRow(ctx, sqlLoanByID, id).
		Scan(&l.ID, &l.DueDate, &l.Renewals, &l.AccountID, &l.BookID, &l.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "repo/loan")
	}
	return l, nil
}

// Delete removes the loan row. Returns db.ErrNotFound when nothing matched.
func (r *LoanRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.Exec(ctx, sqlDeleteLoan, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "repo/loan: rows affected")
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Renew bumps the renewal count and moves the due date, but only while the
// count is below maxRenewals. It reports false when the guard rejected the
// update.
func (r *LoanRepo) Renew(ctx context.Context, id int64, newDue time.Time, maxRenewals int) (bool, error) {
	res, err := r.q.Exec(ctx, sqlRenewLoan, newDue, id, maxRenewals)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "repo/loan: rows affected")
	}
	return n > 0, nil
}

// ListByAccount returns the account's loans joined with book details.
func (r *LoanRepo) ListByAccount(ctx context.Context, accountID int64) ([]models.LoanWithBook, error) {
	rows, err := r.q.Query(ctx, sqlLoansByAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := []models.LoanWithBook{}
	for rows.Next() {
		var lw models.LoanWithBook
		var subject, image sql.NullString
		err := rows.Scan(
			&lw.ID, &lw.DueDate, &lw.Renewals, &lw.AccountID, &lw.BookID, &lw.Loan.CreatedAt,
			&lw.Book.ID, &lw.Book.Title, &lw.Book.Author, &lw.Book.Quantity, &lw.Book.Publisher,
			&subject, &lw.Book.AgeRating, &image, &lw.Book.CreatedAt, &lw.Book.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "repo/loan: scan")
		}
		applyBookNulls(&lw.Book, subject, image)
		loans = append(loans, lw)
	}
	return loans, rows.Err()
}

// ListAll returns every active loan joined with its account and book. The
// account's password hash is deliberately not selected.
func (r *LoanRepo) ListAll(ctx context.Context) ([]models.LoanDetail, error) {
	rows, err := r.q.Query(ctx, sqlListLoans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := []models.LoanDetail{}
	for rows.Next() {
		var ld models.LoanDetail
		var staffID, subject, image sql.NullString
		err := rows.Scan(
			&ld.ID, &ld.DueDate, &ld.Renewals, &ld.AccountID, &ld.BookID, &ld.Loan.CreatedAt,
			&ld.Account.ID, &ld.Account.Name, &ld.Account.Email, &staffID, &ld.Account.CreatedAt, &ld.Account.UpdatedAt,
			&ld.Book.ID, &ld.Book.Title, &ld.Book.Author, &ld.Book.Quantity, &ld.Book.Publisher,
			&subject, &ld.Book.AgeRating, &image, &ld.Book.CreatedAt, &ld.Book.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "repo/loan: scan")
		}
		if staffID.Valid {
			ld.Account.StaffID = &staffID.String
		}
		applyBookNulls(&ld.Book, subject, image)
		loans = append(loans, ld)
	}
	return loans, rows.Err()
}
