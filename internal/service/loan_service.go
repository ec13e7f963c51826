package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/repo"
)

// LoanService implements the borrow/renew/return lifecycle. Borrow and return
// touch both the loans table and the book's quantity, so each runs inside a
// single transaction; the quantity invariant holds under concurrent requests
// because the decrement is guarded (see repo.BookRepo).
type LoanService struct {
	database *db.DB
	accounts *repo.AccountRepo
	books    *repo.BookRepo
	loans    *repo.LoanRepo
}

func NewLoanService(database *db.DB) *LoanService {
	return &LoanService{
		database: database,
		accounts: repo.NewAccountRepo(database),
		books:    repo.NewBookRepo(database),
		loans:    repo.NewLoanRepo(database),
	}
}

// Borrow creates a loan due in seven days and takes one copy off the shelf.
// Loan insert and quantity decrement commit or roll back together.
func (s *LoanService) Borrow(ctx context.Context, accountID, bookID int64) (*models.Loan, error) {
	if accountID == 0 || bookID == 0 {
		return nil, validationErr("account and book are required")
	}

	var loan *models.Loan
	err := s.database.ExecTx(ctx, func(tx *db.Tx) error {
		accounts := repo.NewAccountRepo(tx)
		books := repo.NewBookRepo(tx)
		loans := repo.NewLoanRepo(tx)

		if _, err := accounts.GetByID(ctx, accountID); err != nil {
			if db.IsNotFound(err) {
				return conflictErr("invalid account or book, or book unavailable")
			}
			return errors.Wrap(err, "lookup account")
		}
		if _, err := books.GetByID(ctx, bookID); err != nil {
			if db.IsNotFound(err) {
				return conflictErr("invalid account or book, or book unavailable")
			}
			return errors.Wrap(err, "lookup book")
		}

		dueDate := time.Now().UTC().AddDate(0, 0, models.LoanPeriodDays)
		created, err := loans.Insert(ctx, accountID, bookID, dueDate)
		if err != nil {
			return errors.Wrap(err, "insert loan")
		}

		ok, err := books.DecrementQuantity(ctx, bookID)
		if err != nil {
			return errors.Wrap(err, "decrement quantity")
		}
		if !ok {
			// No copies left; aborting rolls the loan insert back too.
			return conflictErr("invalid account or book, or book unavailable")
		}

		loan = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return puts the copy back and deletes the loan record in one transaction.
func (s *LoanService) Return(ctx context.Context, loanID int64) error {
	return s.database.ExecTx(ctx, func(tx *db.Tx) error {
		books := repo.NewBookRepo(tx)
		loans := repo.NewLoanRepo(tx)

		loan, err := loans.GetByID(ctx, loanID)
		if err != nil {
			if db.IsNotFound(err) {
				return notFoundErr("invalid loan id")
			}
			return errors.Wrap(err, "lookup loan")
		}

		if err := books.IncrementQuantity(ctx, loan.BookID); err != nil {
			if db.IsNotFound(err) {
				// Loan points at a book row that no longer exists.
				return conflictErr("book not found")
			}
			return errors.Wrap(err, "increment quantity")
		}

		if err := loans.Delete(ctx, loan.ID); err != nil {
			return errors.Wrap(err, "delete loan")
		}
		return nil
	})
}

// Renew extends the due date seven days past the current due date, not past
// now, and increments the renewal count. At most two renewals per loan.
func (s *LoanService) Renew(ctx context.Context, loanID int64) error {
	return s.database.ExecTx(ctx, func(tx *db.Tx) error {
		loans := repo.NewLoanRepo(tx)

		loan, err := loans.GetByID(ctx, loanID)
		if err != nil {
			if db.IsNotFound(err) {
				return conflictErr("cannot renew further")
			}
			return errors.Wrap(err, "lookup loan")
		}
		if loan.Renewals >= models.MaxRenewals {
			return conflictErr("cannot renew further")
		}

		newDue := loan.DueDate.AddDate(0, 0, models.LoanPeriodDays)
		ok, err := loans.Renew(ctx, loan.ID, newDue, models.MaxRenewals)
		if err != nil {
			return errors.Wrap(err, "renew loan")
		}
		if !ok {
			return conflictErr("cannot renew further")
		}
		return nil
	})
}

// ListForAccount returns the account's loans, each with its book.
func (s *LoanService) ListForAccount(ctx context.Context, accountID int64) ([]models.LoanWithBook, error) {
	loans, err := s.loans.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "list loans")
	}
	return loans, nil
}

// ListAllActive returns every active loan with account and book, the
// librarian's administrative view.
func (s *LoanService) ListAllActive(ctx context.Context) ([]models.LoanDetail, error) {
	loans, err := s.loans.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list loans")
	}
	return loans, nil
}
