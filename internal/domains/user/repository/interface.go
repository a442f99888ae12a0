package repository

import (
	"context"

	"bookshelf-backend/internal/domains/user/model"
	"bookshelf-backend/internal/shared/query"
)

// RepositoryInterface - data access for users.
type RepositoryInterface interface {
	List(ctx context.Context, params query.Params) ([]model.User, query.PageInfo, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Exists(ctx context.Context, id int64) (bool, error)

	// Register inserts a user whose role is admin when the table is empty
	// and user otherwise.
	Register(ctx context.Context, u *model.User) (*model.User, error)
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}
