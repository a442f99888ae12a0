package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bookshelf-backend/internal/shared/apperror"
)

// ReadingHistory - one book on a user's reading list.
type ReadingHistory struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	BookID    int64     `db:"book_id"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var Columns = []string{"id", "user_id", "book_id", "is_read", "created_at", "updated_at"}

const (
	MsgCreated = "Book added to your reading history"
	MsgRead    = "Book history updated to read."
)

var (
	ErrHistoryNotFound = apperror.NotFound("Reading history not found.")
	ErrForbidden       = apperror.Forbidden("Permission denial!")
	ErrNotOwner        = apperror.Forbidden("Not allowed to modify this content")

	ErrUserNotFound = apperror.Validation("user_id", "The selected user id is invalid.")
	ErrBookNotFound = apperror.Validation("book_id", "The selected book id is invalid.")
)

// ============ REQUESTS ============

type CreateRequest struct {
	BookID int64  `json:"book_id"`
	UserID *int64 `json:"user_id"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.UserID, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
}

// UpdateRequest - is_read must be present; false is a valid value.
type UpdateRequest struct {
	IsRead *bool `json:"is_read"`
}

func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsRead, validation.NotNil),
	)
}

// ============ RESPONSES ============

type Response struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *ReadingHistory) ToResponse() Response {
	return Response{
		ID:        h.ID,
		UserID:    h.UserID,
		BookID:    h.BookID,
		IsRead:    h.IsRead,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func ToResponses(items []ReadingHistory) []Response {
	out := make([]Response, 0, len(items))
	for i := range items {
		out = append(out, items[i].ToResponse())
	}
	return out
}
