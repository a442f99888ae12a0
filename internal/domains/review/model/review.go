package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bookshelf-backend/internal/shared/apperror"
)

// Review - Domain Entity (from database). A user may review a book more
// than once.
type Review struct {
	ID        int64     `db:"id"`
	Comment   string    `db:"comment"`
	UserID    int64     `db:"user_id"`
	BookID    int64     `db:"book_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var Columns = []string{"id", "comment", "user_id", "book_id", "created_at", "updated_at"}

var (
	ErrReviewNotFound = apperror.NotFound("Review not found.")
	ErrForbidden      = apperror.Forbidden("Permission denial!")

	ErrUserNotFound = apperror.Validation("user_id", "The selected user id is invalid.")
	ErrBookNotFound = apperror.Validation("book_id", "The selected book id is invalid.")
)

// Scope narrows a review listing.
type Scope struct {
	UserID *int64
	BookID *int64
}

// ============ REQUESTS ============

// CreateReviewRequest - user_id defaults to the caller when omitted.
type CreateReviewRequest struct {
	Comment string `json:"comment"`
	BookID  int64  `json:"book_id"`
	UserID  *int64 `json:"user_id"`
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Comment, validation.Required),
		validation.Field(&r.BookID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.UserID, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
}

type UpdateReviewRequest struct {
	Comment string `json:"comment"`
}

func (r UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Comment, validation.Required),
	)
}

// ============ RESPONSES ============

type ReviewResponse struct {
	ID        int64     `json:"id"`
	Comment   string    `json:"comment"`
	BookID    int64     `json:"book_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Review) ToResponse() ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		Comment:   r.Comment,
		BookID:    r.BookID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func ToResponses(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, reviews[i].ToResponse())
	}
	return out
}
