package model

import "time"

// Author - Domain Entity (from database)
type Author struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	About       string     `json:"about" db:"about"`
	Summary     *string    `json:"summary" db:"summary"`
	DateBirthed *time.Time `json:"date_birthed" db:"date_birthed"`
	DateDied    *time.Time `json:"date_died" db:"date_died"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Books is nil unless loaded for the show endpoint.
	Books []BookSummary `json:"-" db:"-"`
}

// BookSummary is the slice of a book shown under an author.
type BookSummary struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Subtitle      *string   `db:"subtitle"`
	ImageURL      string    `db:"image_url"`
	Publisher     string    `db:"publisher"`
	PublishedDate time.Time `db:"published_date"`
}

// Columns selected for an author row, in table order.
var Columns = []string{"id", "name", "about", "summary", "date_birthed", "date_died", "created_at", "updated_at"}
