package model

import "bookshelf-backend/internal/shared/apperror"

var (
	ErrBookNotFound = apperror.NotFound("Book not found.")

	ErrUserNotFound    = apperror.Validation("user_id", "The selected user id is invalid.")
	ErrAuthorsNotFound = apperror.Validation("author_ids", "The selected author ids are invalid.")
	ErrInvalidImage    = apperror.Validation("image", "The image must be an image.")
	ErrImageTooLarge   = apperror.Validation("image", "The image may not be greater than the allowed size.")
	ErrInvalidDocument = apperror.Validation("book", "The book must be a file.")
	ErrDocumentTooBig  = apperror.Validation("book", "The book may not be greater than the allowed size.")
	ErrUploadTooLarge  = apperror.Validation("book", "The upload may not be greater than the allowed size.")
)
