package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/repo"
)

// CatalogService owns book creation, partial updates and listing.
type CatalogService struct {
	books *repo.BookRepo
}

func NewCatalogService(database *db.DB) *CatalogService {
	return &CatalogService{books: repo.NewBookRepo(database)}
}

// AddBook validates the required fields and persists a new catalog entry.
func (s *CatalogService) AddBook(ctx context.Context, params models.CreateBookParams) (*models.Book, error) {
	if params.Title == "" || params.Author == "" || params.Publisher == "" {
		return nil, validationErr("title, author and publisher are required")
	}
	if params.Quantity < 0 {
		return nil, validationErr("quantity must not be negative")
	}
	if !models.IsValidAgeRating(string(params.AgeRating)) {
		return nil, validationErr("invalid age rating")
	}

	book, err := s.books.Insert(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "insert book")
	}
	return book, nil
}

// UpdateBook applies only the fields present in params. Callers translate
// empty form values to nil pointers, which preserves the long-standing
// behavior that an absent or falsy field leaves the stored value untouched.
func (s *CatalogService) UpdateBook(ctx context.Context, id int64, params models.UpdateBookParams) (*models.Book, error) {
	if params.AgeRating != nil && !models.IsValidAgeRating(string(*params.AgeRating)) {
		return nil, validationErr("invalid age rating")
	}

	book, err := s.books.Update(ctx, id, params)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, notFoundErr("book not found")
		}
		return nil, errors.Wrap(err, "update book")
	}
	return book, nil
}

// ListBooks returns the whole catalog in insertion order.
func (s *CatalogService) ListBooks(ctx context.Context) ([]models.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	return books, nil
}
