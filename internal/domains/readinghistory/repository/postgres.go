package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"

	"bookshelf-backend/internal/domains/readinghistory/model"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/pkg/database"
)

// RepositoryInterface - data access for reading histories.
type RepositoryInterface interface {
	ListForUser(ctx context.Context, userID int64, params query.Params) ([]model.ReadingHistory, query.PageInfo, error)
	GetByID(ctx context.Context, id int64) (*model.ReadingHistory, error)
	Create(ctx context.Context, userID, bookID int64) (*model.ReadingHistory, error)
	SetRead(ctx context.Context, id int64, isRead bool) (*model.ReadingHistory, error)
	Delete(ctx context.Context, id int64) error
}

// Source is the list definition for GET /reading_histories. Callers always
// add a user scope.
var Source = &query.Source{
	Table:  "reading_histories",
	Select: model.Columns,
	Columns: map[string]query.ColumnType{
		"id":         query.Integer,
		"book_id":    query.Integer,
		"is_read":    query.Boolean,
		"created_at": query.Timestamp,
		"updated_at": query.Timestamp,
	},
}

var historyColumns = strings.Join(model.Columns, ", ")

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID int64, params query.Params) ([]model.ReadingHistory, query.PageInfo, error) {
	src := Source.WithScope(Source.Col("user_id").Eq(userID))
	return query.List[model.ReadingHistory](ctx, r.db, src, params)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.ReadingHistory, error) {
	return r.one(ctx, "SELECT "+historyColumns+" FROM reading_histories WHERE id = $1", id)
}

func (r *postgresRepository) Create(ctx context.Context, userID, bookID int64) (*model.ReadingHistory, error) {
	sql := "INSERT INTO reading_histories (user_id, book_id) VALUES ($1, $2) RETURNING " + historyColumns
	return r.one(ctx, sql, userID, bookID)
}

func (r *postgresRepository) SetRead(ctx context.Context, id int64, isRead bool) (*model.ReadingHistory, error) {
	sql := "UPDATE reading_histories SET is_read = $1, updated_at = NOW() WHERE id = $2 RETURNING " + historyColumns
	return r.one(ctx, sql, isRead, id)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM reading_histories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete reading history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrHistoryNotFound
	}
	return nil
}

func (r *postgresRepository) one(ctx context.Context, sql string, args ...any) (*model.ReadingHistory, error) {
	var h model.ReadingHistory
	if err := pgxscan.Get(ctx, r.db, &h, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, model.ErrHistoryNotFound
		}
		if constraint, ok := database.ForeignKeyViolation(err); ok {
			if strings.Contains(constraint, "user_id") {
				return nil, model.ErrUserNotFound.WithCause(err)
			}
			return nil, model.ErrBookNotFound.WithCause(err)
		}
		return nil, fmt.Errorf("failed to query reading history: %w", err)
	}
	return &h, nil
}
