package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"

	"bookshelf-backend/internal/domains/review/model"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/pkg/database"
)

// RepositoryInterface - data access for reviews.
type RepositoryInterface interface {
	List(ctx context.Context, scope model.Scope, params query.Params) ([]model.Review, query.PageInfo, error)
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	Create(ctx context.Context, r *model.Review) (*model.Review, error)
	UpdateComment(ctx context.Context, id int64, comment string) (*model.Review, error)
	Delete(ctx context.Context, id int64) error
}

// Source is the list definition for GET /reviews.
var Source = &query.Source{
	Table:  "reviews",
	Select: model.Columns,
	Columns: map[string]query.ColumnType{
		"id":         query.Integer,
		"comment":    query.Text,
		"user_id":    query.Integer,
		"book_id":    query.Integer,
		"created_at": query.Timestamp,
		"updated_at": query.Timestamp,
	},
	SearchFields: []string{"comment"},
}

var reviewColumns = strings.Join(model.Columns, ", ")

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context, scope model.Scope, params query.Params) ([]model.Review, query.PageInfo, error) {
	src := Source
	if scope.UserID != nil {
		src = src.WithScope(Source.Col("user_id").Eq(*scope.UserID))
	}
	if scope.BookID != nil {
		src = src.WithScope(Source.Col("book_id").Eq(*scope.BookID))
	}
	return query.List[model.Review](ctx, r.db, src, params)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	return r.one(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE id = $1", id)
}

func (r *postgresRepository) Create(ctx context.Context, rv *model.Review) (*model.Review, error) {
	sql := "INSERT INTO reviews (comment, user_id, book_id) VALUES ($1, $2, $3) RETURNING " + reviewColumns
	return r.one(ctx, sql, rv.Comment, rv.UserID, rv.BookID)
}

func (r *postgresRepository) UpdateComment(ctx context.Context, id int64, comment string) (*model.Review, error) {
	sql := "UPDATE reviews SET comment = $1, updated_at = NOW() WHERE id = $2 RETURNING " + reviewColumns
	return r.one(ctx, sql, comment, id)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

func (r *postgresRepository) one(ctx context.Context, sql string, args ...any) (*model.Review, error) {
	var rv model.Review
	if err := pgxscan.Get(ctx, r.db, &rv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, model.ErrReviewNotFound
		}
		if constraint, ok := database.ForeignKeyViolation(err); ok {
			if strings.Contains(constraint, "user_id") {
				return nil, model.ErrUserNotFound.WithCause(err)
			}
			return nil, model.ErrBookNotFound.WithCause(err)
		}
		return nil, fmt.Errorf("failed to query review: %w", err)
	}
	return &rv, nil
}
