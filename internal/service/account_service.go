package service

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/repo"
)

// bcryptCost matches the salt rounds the frontend-facing service has always
// used for stored hashes.
const bcryptCost = 10

// AccountService registers patrons and librarians and verifies credentials.
type AccountService struct {
	accounts *repo.AccountRepo
}

func NewAccountService(database *db.DB) *AccountService {
	return &AccountService{accounts: repo.NewAccountRepo(database)}
}

// RegisterPatron hashes the password and stores a new patron account.
func (s *AccountService) RegisterPatron(ctx context.Context, name, email, password string) (*models.Account, error) {
	return s.register(ctx, name, email, password, nil)
}

// RegisterLibrarian is RegisterPatron plus a unique staff identifier.
func (s *AccountService) RegisterLibrarian(ctx context.Context, name, email, password, staffID string) (*models.Account, error) {
	if staffID == "" {
		return nil, validationErr("staff identifier is required")
	}
	return s.register(ctx, name, email, password, &staffID)
}

func (s *AccountService) register(ctx context.Context, name, email, password string, staffID *string) (*models.Account, error) {
	if name == "" || email == "" || password == "" {
		return nil, validationErr("name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	account, err := s.accounts.Insert(ctx, models.CreateAccountParams{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		StaffID:      staffID,
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, validationErr("email or staff identifier already registered")
		}
		return nil, errors.Wrap(err, "insert account")
	}
	return account, nil
}

// AuthenticatePatron verifies email and password against the stored hash.
// The same message covers unknown email and wrong password.
func (s *AccountService) AuthenticatePatron(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	return verifyCredentials(account, err, password)
}

// AuthenticateLibrarian is AuthenticatePatron constrained to accounts with a
// staff identifier.
func (s *AccountService) AuthenticateLibrarian(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accounts.GetLibrarianByEmail(ctx, email)
	return verifyCredentials(account, err, password)
}

func verifyCredentials(account *models.Account, lookupErr error, password string) (*models.Account, error) {
	if lookupErr != nil {
		if db.IsNotFound(lookupErr) {
			return nil, authErr("invalid credentials")
		}
		return nil, errors.Wrap(lookupErr, "lookup account")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, authErr("invalid credentials")
	}
	return account, nil
}
