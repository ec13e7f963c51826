package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
	"github.com/TurmaJB/Biblioteca-JB-online/internal/models"
)

type BookRepo struct {
	q db.Querier
}

func NewBookRepo(q db.Querier) *BookRepo {
	return &BookRepo{q: q}
}

const (
	sqlInsertBook = `
		INSERT INTO books (title, author, quantity, publisher, subject, age_rating, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqlSelectBook = `
		SELECT id, title, author, quantity, publisher, subject, age_rating, image, created_at, updated_at
		FROM   books`

	sqlBookByID = sqlSelectBook + `
		WHERE  id = ?`

	sqlListBooks = sqlSelectBook + `
		ORDER  BY id`

	// The quantity > 0 guard makes concurrent borrows of the last copy
	// serialize correctly: only one UPDATE reports an affected row.
	sqlDecrementQuantity = `
		UPDATE books
		SET    quantity = quantity - 1, updated_at = ?
		WHERE  id = ? AND quantity > 0`

	sqlIncrementQuantity = `
		UPDATE books
		SET    quantity = quantity + 1, updated_at = ?
		WHERE  id = ?`
)

func (r *BookRepo) Insert(ctx context.Context, params models.CreateBookParams) (*models.Book, error) {
	now := time.Now().UTC()
	res, err := r.q.Exec(ctx, sqlInsertBook,
		params.Title, params.Author, params.Quantity, params.Publisher,
		nullString(params.Subject), string(params.AgeRating), nullString(params.Image), now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "repo/book: last insert id")
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a single book by primary key, or db.ErrNotFound.
func (r *BookRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	return scanBook(r.q.QueryRow(ctx, sqlBookByID, id))
}

// List returns all books in insertion order.
func (r *BookRepo) List(ctx context.Context) ([]models.Book, error) {
	rows, err := r.q.Query(ctx, sqlListBooks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBookRow(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// Update applies a partial update. Only non-nil fields in params are written;
// the SQL is built dynamically but stays fully visible.
func (r *BookRepo) Update(ctx context.Context, id int64, params models.UpdateBookParams) (*models.Book, error) {
	setClauses := make([]string, 0, 7)
	args := make([]any, 0, 8)

	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", column))
		args = append(args, value)
	}

	if params.Title != nil {
		add("title", *params.Title)
	}
	if params.Author != nil {
		add("author", *params.Author)
	}
	if params.Quantity != nil {
		add("quantity", *params.Quantity)
	}
	if params.Publisher != nil {
		add("publisher", *params.Publisher)
	}
	if params.Subject != nil {
		add("subject", *params.Subject)
	}
	if params.AgeRating != nil {
		add("age_rating", string(*params.AgeRating))
	}
	if params.Image != nil {
		add("image", *params.Image)
	}
	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE books SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	res, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "repo/book: rows affected")
	}
	if n == 0 {
		return nil, db.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// DecrementQuantity atomically takes one copy off the shelf. It reports false
// when the book is missing or has no available copies.
func (r *BookRepo) DecrementQuantity(ctx context.Context, id int64) (bool, error) {
	res, err := r.q.Exec(ctx, sqlDecrementQuantity, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "repo/book: rows affected")
	}
	return n > 0, nil
}

// IncrementQuantity puts one copy back on the shelf.
func (r *BookRepo) IncrementQuantity(ctx context.Context, id int64) error {
	res, err := r.q.Exec(ctx, sqlIncrementQuantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "repo/book: rows affected")
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func scanBook(row *db.Row) (*models.Book, error) {
	b := &models.Book{}
	var subject, image sql.NullString
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Quantity, &b.Publisher,
		&subject, &b.AgeRating, &image, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "repo/book")
	}
	applyBookNulls(b, subject, image)
	return b, nil
}

func scanBookRow(rows *sql.Rows) (*models.Book, error) {
	b := &models.Book{}
	var subject, image sql.NullString
	err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Quantity, &b.Publisher,
		&subject, &b.AgeRating, &image, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "repo/book: scan")
	}
	applyBookNulls(b, subject, image)
	return b, nil
}

func applyBookNulls(b *models.Book, subject, image sql.NullString) {
	if subject.Valid {
		b.Subject = &subject.String
	}
	if image.Valid {
		b.Image = &image.String
	}
}
