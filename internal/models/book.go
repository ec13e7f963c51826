package models

import (
	"time"
)

// AgeRating classifies a book's intended audience. The wire values are the
// Portuguese labels the frontend has always sent.
type AgeRating string

const (
	RatingGeneral    AgeRating = "Livre"
	RatingChildren   AgeRating = "Infantil"
	RatingYoungAdult AgeRating = "Infantojuvenil"
	RatingAdult      AgeRating = "Adulto"
)

var ValidAgeRatings = map[string]bool{
	string(RatingGeneral):    true,
	string(RatingChildren):   true,
	string(RatingYoungAdult): true,
	string(RatingAdult):      true,
}

func IsValidAgeRating(rating string) bool {
	return ValidAgeRatings[rating]
}

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Quantity  int       `json:"quantity"`
	Publisher string    `json:"publisher"`
	Subject   *string   `json:"subject,omitempty"`
	AgeRating AgeRating `json:"ageRating"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateBookParams struct {
	Title     string
	Author    string
	Quantity  int
	Publisher string
	Subject   *string
	AgeRating AgeRating
	Image     *string
}

// UpdateBookParams holds the fields a catalog update may change. All fields
// are pointers; nil means "leave the stored value unchanged".
type UpdateBookParams struct {
	Title     *string
	Author    *string
	Quantity  *int
	Publisher *string
	Subject   *string
	AgeRating *AgeRating
	Image     *string
}
