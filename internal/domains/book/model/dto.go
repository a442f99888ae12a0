package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	authormodel "bookshelf-backend/internal/domains/author/model"
)

// ============ REQUESTS ============

// CreateBookRequest is the multipart form of POST /books.
// Files are read separately by the handler.
type CreateBookRequest struct {
	Title         string  `form:"title" binding:"required,max=255"`
	Subtitle      *string `form:"subtitle" binding:"omitempty,max=255"`
	Description   string  `form:"description" binding:"required"`
	Publisher     string  `form:"publisher" binding:"required,max=255"`
	PublishedDate string  `form:"published_date" binding:"required,datetime=2006-01-02"`
	NumberOfPages *int32  `form:"number_of_pages" binding:"omitempty,gte=1"`
	Language      *string `form:"language" binding:"omitempty,max=50"`
	AuthorIDs     []int64 `form:"author_ids" binding:"required,min=1,dive,gte=1"`
}

// UpdateBookRequest is the JSON body of PUT /books/:id. Ratings are not
// writable here; they only change through POST /books/ratings.
type UpdateBookRequest struct {
	Title         string  `json:"title"`
	Subtitle      *string `json:"subtitle"`
	Description   string  `json:"description"`
	Publisher     string  `json:"publisher"`
	PublishedDate string  `json:"published_date"`
	NumberOfPages *int32  `json:"number_of_pages"`
	Language      *string `json:"language"`
	AuthorIDs     []int64 `json:"author_ids"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.Publisher, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.PublishedDate, validation.Required, validation.Date(time.DateOnly)),
		validation.Field(&r.NumberOfPages, validation.NilOrNotEmpty, validation.Min(int32(1))),
		validation.Field(&r.AuthorIDs, validation.Required, validation.Each(validation.Min(int64(1)))),
	)
}

// RateBookRequest is the JSON body of POST /books/ratings.
type RateBookRequest struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	Rating int   `json:"rating"`
}

func (r RateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
	)
}

// ToBook converts the validated form into an entity. Files and authors are
// handled by the service.
func (r CreateBookRequest) ToBook() *Book {
	date, _ := time.Parse(time.DateOnly, r.PublishedDate)
	return &Book{
		Title:         r.Title,
		Subtitle:      r.Subtitle,
		Description:   r.Description,
		Publisher:     r.Publisher,
		PublishedDate: date,
		NumberOfPages: r.NumberOfPages,
		Language:      r.Language,
	}
}

// Apply copies the editable columns onto b.
func (r UpdateBookRequest) Apply(b *Book) {
	date, _ := time.Parse(time.DateOnly, r.PublishedDate)
	b.Title = r.Title
	b.Subtitle = r.Subtitle
	b.Description = r.Description
	b.Publisher = r.Publisher
	b.PublishedDate = date
	b.NumberOfPages = r.NumberOfPages
	b.Language = r.Language
}

// ============ RESPONSES ============

type BookResponse struct {
	ID            int64                         `json:"id"`
	Title         string                        `json:"title"`
	Subtitle      *string                       `json:"subtitle"`
	Description   string                        `json:"description"`
	ImageURL      string                        `json:"image_url"`
	Publisher     string                        `json:"publisher"`
	PublishedDate string                        `json:"published_date"`
	NumberOfPages *int32                        `json:"number_of_pages"`
	Language      *string                       `json:"language"`
	Rating        *float64                      `json:"rating"`
	Ratings       Ratings                       `json:"ratings"`
	BookURL       string                        `json:"book_url"`
	Authors       *[]authormodel.AuthorResponse `json:"authors,omitempty"`
	CreatedAt     time.Time                     `json:"created_at"`
	UpdatedAt     time.Time                     `json:"updated_at"`
}

// ToResponse presents the book. The mean rating is derived on every call.
func (b *Book) ToResponse() BookResponse {
	resp := BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Subtitle:      b.Subtitle,
		Description:   b.Description,
		ImageURL:      b.ImageURL,
		Publisher:     b.Publisher,
		PublishedDate: b.PublishedDate.Format(time.DateOnly),
		NumberOfPages: b.NumberOfPages,
		Language:      b.Language,
		Rating:        b.Ratings.Mean(),
		Ratings:       b.Ratings.OrEmpty(),
		BookURL:       b.BookURL,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}

	if b.Authors != nil {
		authors := authormodel.ToResponses(b.Authors)
		resp.Authors = &authors
	}

	return resp
}

func ToResponses(books []Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, books[i].ToResponse())
	}
	return out
}
