package model

import "bookshelf-backend/internal/shared/apperror"

var (
	ErrAuthorNotFound = apperror.NotFound("Author not found.")
)
