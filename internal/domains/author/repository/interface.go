package repository

import (
	"context"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/shared/query"
)

// RepositoryInterface - data access for authors.
type RepositoryInterface interface {
	List(ctx context.Context, params query.Params) ([]model.Author, query.PageInfo, error)
	GetByID(ctx context.Context, id int64) (*model.Author, error)
	Create(ctx context.Context, author *model.Author) (*model.Author, error)
	Update(ctx context.Context, author *model.Author) (*model.Author, error)
	Delete(ctx context.Context, id int64) error
	// Books lists the books written by the author, newest first.
	Books(ctx context.Context, authorID int64) ([]model.BookSummary, error)
}
