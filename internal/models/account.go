package models

import (
	"time"
)

type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	StaffID      *string   `json:"staffId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsLibrarian reports whether the account carries a staff identifier,
// which is the sole discriminator between librarians and patrons.
func (a *Account) IsLibrarian() bool {
	return a.StaffID != nil && *a.StaffID != ""
}

type CreateAccountParams struct {
	Name         string
	Email        string
	PasswordHash string
	StaffID      *string
}
