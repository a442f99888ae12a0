package model

import (
	"time"

	authormodel "bookshelf-backend/internal/domains/author/model"
)

// Book - Domain Entity (from database)
type Book struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Subtitle      *string   `db:"subtitle"`
	Description   string    `db:"description"`
	ImageURL      string    `db:"image_url"`
	BookURL       string    `db:"book_url"`
	Publisher     string    `db:"publisher"`
	PublishedDate time.Time `db:"published_date"`
	NumberOfPages *int32    `db:"number_of_pages"`
	Language      *string   `db:"language"`
	Ratings       Ratings   `db:"ratings"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	// Authors is nil when the relation was not loaded.
	Authors []authormodel.Author `db:"-"`
}

// Columns selected for a book row.
var Columns = []string{
	"id", "title", "subtitle", "description", "image_url", "book_url", "publisher",
	"published_date", "number_of_pages", "language", "ratings", "created_at", "updated_at",
}

// File is an uploaded file as received by the handler.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
