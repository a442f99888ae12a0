package repository

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/pkg/database"
)

// Source is the list definition for GET /authors.
var Source = &query.Source{
	Table:  "authors",
	Select: model.Columns,
	Columns: map[string]query.ColumnType{
		"id":           query.Integer,
		"name":         query.Text,
		"about":        query.Text,
		"summary":      query.Text,
		"date_birthed": query.Date,
		"date_died":    query.Date,
		"created_at":   query.Timestamp,
		"updated_at":   query.Timestamp,
	},
	SearchFields: []string{"name"},
	Relations: map[string]query.Relation{
		"books": {
			Table:      "books",
			Pivot:      "book_author",
			LocalKey:   "author_id",
			ForeignKey: "book_id",
			Columns:    map[string]query.ColumnType{"title": query.Text, "published_date": query.Date},
		},
	},
}

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context, params query.Params) ([]model.Author, query.PageInfo, error) {
	return query.List[model.Author](ctx, r.db, Source, params)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Author, error) {
	ds := query.Dialect().From("authors").Prepared(true).
		Select(columns()...).
		Where(goqu.C("id").Eq(id))
	return r.one(ctx, ds.ToSQL)
}

func (r *postgresRepository) Create(ctx context.Context, a *model.Author) (*model.Author, error) {
	ds := query.Dialect().Insert("authors").Prepared(true).
		Rows(record(a)).
		Returning(columns()...)
	return r.one(ctx, ds.ToSQL)
}

func (r *postgresRepository) Update(ctx context.Context, a *model.Author) (*model.Author, error) {
	rec := record(a)
	rec["updated_at"] = goqu.L("NOW()")

	ds := query.Dialect().Update("authors").Prepared(true).
		Set(rec).
		Where(goqu.C("id").Eq(a.ID)).
		Returning(columns()...)
	return r.one(ctx, ds.ToSQL)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM authors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAuthorNotFound
	}
	return nil
}

func (r *postgresRepository) Books(ctx context.Context, authorID int64) ([]model.BookSummary, error) {
	sql := `
		SELECT b.id, b.title, b.subtitle, b.image_url, b.publisher, b.published_date
		FROM books b
		JOIN book_author ba ON ba.book_id = b.id
		WHERE ba.author_id = $1
		ORDER BY b.published_date DESC, b.id DESC`

	books := []model.BookSummary{}
	if err := pgxscan.Select(ctx, r.db, &books, sql, authorID); err != nil {
		return nil, fmt.Errorf("failed to list author books: %w", err)
	}
	return books, nil
}

func (r *postgresRepository) one(ctx context.Context, build func() (string, []any, error)) (*model.Author, error) {
	sql, args, err := build()
	if err != nil {
		return nil, fmt.Errorf("failed to build author query: %w", err)
	}

	var a model.Author
	if err := pgxscan.Get(ctx, r.db, &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to query author: %w", err)
	}
	return &a, nil
}

func record(a *model.Author) goqu.Record {
	return goqu.Record{
		"name":         a.Name,
		"about":        a.About,
		"summary":      a.Summary,
		"date_birthed": a.DateBirthed,
		"date_died":    a.DateDied,
	}
}

func columns() []any {
	cols := make([]any, 0, len(model.Columns))
	for _, c := range model.Columns {
		cols = append(cols, c)
	}
	return cols
}
