package model

import (
	"time"

	"bookshelf-backend/internal/shared/apperror"
)

// User - Domain Entity (from database)
type User struct {
	ID              int64      `db:"id"`
	Name            string     `db:"name"`
	Email           string     `db:"email"`
	Username        string     `db:"username"`
	PasswordHash    string     `db:"password_hash"`
	Role            string     `db:"role"`
	EmailVerifiedAt *time.Time `db:"email_verified_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// Columns selected for a user row.
var Columns = []string{
	"id", "name", "email", "username", "password_hash", "role",
	"email_verified_at", "created_at", "updated_at",
}

var (
	ErrUserNotFound = apperror.NotFound("User not found.")
	ErrForbidden    = apperror.Forbidden("Permission denial!")

	ErrInvalidCredentials = apperror.Validation("email", "These credentials do not match our records.")
	ErrEmailTaken         = apperror.Validation("email", "The email has already been taken.")
	ErrUsernameTaken      = apperror.Validation("username", "The username has already been taken.")
)
