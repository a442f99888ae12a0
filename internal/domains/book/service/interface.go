package service

import (
	"context"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/shared/query"
)

// ServiceInterface - book business logic.
type ServiceInterface interface {
	List(ctx context.Context, params query.Params) ([]model.Book, query.PageInfo, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, req model.CreateBookRequest, image, document model.File) (*model.Book, error)
	Update(ctx context.Context, id int64, req model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	ApplyRating(ctx context.Context, req model.RateBookRequest) (*model.Book, error)
}

// UserLookup is the part of the user repository the rating flow needs.
type UserLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
