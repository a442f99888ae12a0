package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AuthorRequest is the body of POST and PUT /authors.
type AuthorRequest struct {
	Name        string  `json:"name"`
	About       string  `json:"about"`
	Summary     *string `json:"summary"`
	DateBirthed *string `json:"date_birthed"`
	DateDied    *string `json:"date_died"`
}

func (r AuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.About, validation.Required),
		validation.Field(&r.DateBirthed, validation.NilOrNotEmpty, validation.Date(time.DateOnly)),
		validation.Field(&r.DateDied, validation.NilOrNotEmpty, validation.Date(time.DateOnly)),
	)
}

// ToAuthor converts a validated request into an entity.
func (r AuthorRequest) ToAuthor() *Author {
	return &Author{
		Name:        r.Name,
		About:       r.About,
		Summary:     r.Summary,
		DateBirthed: parseDate(r.DateBirthed),
		DateDied:    parseDate(r.DateDied),
	}
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil
	}
	return &t
}

// ============ RESPONSES ============

type AuthorResponse struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	About       string                 `json:"about"`
	Summary     *string                `json:"summary"`
	DateBirthed *string                `json:"date_birthed"`
	DateDied    *string                `json:"date_died"`
	Books       *[]BookSummaryResponse `json:"books,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

type BookSummaryResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Subtitle      *string `json:"subtitle"`
	ImageURL      string  `json:"image_url"`
	Publisher     string  `json:"publisher"`
	PublishedDate string  `json:"published_date"`
}

func (a *Author) ToResponse() AuthorResponse {
	resp := AuthorResponse{
		ID:          a.ID,
		Name:        a.Name,
		About:       a.About,
		Summary:     a.Summary,
		DateBirthed: formatDate(a.DateBirthed),
		DateDied:    formatDate(a.DateDied),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}

	if a.Books != nil {
		books := make([]BookSummaryResponse, 0, len(a.Books))
		for _, b := range a.Books {
			books = append(books, BookSummaryResponse{
				ID:            b.ID,
				Title:         b.Title,
				Subtitle:      b.Subtitle,
				ImageURL:      b.ImageURL,
				Publisher:     b.Publisher,
				PublishedDate: b.PublishedDate.Format(time.DateOnly),
			})
		}
		resp.Books = &books
	}

	return resp
}

// ToResponses presents a page of authors.
func ToResponses(authors []Author) []AuthorResponse {
	out := make([]AuthorResponse, 0, len(authors))
	for i := range authors {
		out = append(out, authors[i].ToResponse())
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
