package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/shared/query"
)

// RepositoryInterface - data access for books and their author links.
type RepositoryInterface interface {
	// WithTx returns a repository bound to tx.
	WithTx(tx pgx.Tx) RepositoryInterface

	List(ctx context.Context, params query.Params) ([]model.Book, query.PageInfo, error)
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, book *model.Book) (*model.Book, error)
	Update(ctx context.Context, book *model.Book) (*model.Book, error)
	UpdateRatings(ctx context.Context, id int64, ratings model.Ratings) (*model.Book, error)
	Delete(ctx context.Context, id int64) (*model.Book, error)

	SyncAuthors(ctx context.Context, bookID int64, authorIDs []int64) error
	// LoadAuthors sets Authors on every book, ordered by author name.
	LoadAuthors(ctx context.Context, books []model.Book) error
	MissingAuthors(ctx context.Context, authorIDs []int64) ([]int64, error)
}
