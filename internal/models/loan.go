package models

import (
	"time"
)

// MaxRenewals caps how many times a single loan can be renewed.
const MaxRenewals = 2

// LoanPeriodDays is the borrowing period; renewals extend the due date by the
// same amount, counted from the current due date.
const LoanPeriodDays = 7

type Loan struct {
	ID        int64     `json:"id"`
	DueDate   time.Time `json:"dueDate"`
	Renewals  int       `json:"renewals"`
	AccountID int64     `json:"accountId"`
	BookID    int64     `json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoanWithBook is the patron-facing listing row: a loan joined with the
// borrowed book.
type LoanWithBook struct {
	Loan
	Book Book `json:"book"`
}

// LoanDetail is the librarian-facing listing row: a loan joined with both the
// owning account and the borrowed book.
type LoanDetail struct {
	Loan
	Account Account `json:"account"`
	Book    Book    `json:"book"`
}
