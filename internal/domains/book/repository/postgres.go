package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	authormodel "bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/pkg/database"
)

// Source is the list definition for GET /books.
var Source = &query.Source{
	Table:  "books",
	Select: model.Columns,
	Columns: map[string]query.ColumnType{
		"id":              query.Integer,
		"title":           query.Text,
		"subtitle":        query.Text,
		"description":     query.Text,
		"publisher":       query.Text,
		"published_date":  query.Date,
		"number_of_pages": query.Integer,
		"language":        query.Text,
		"created_at":      query.Timestamp,
		"updated_at":      query.Timestamp,
	},
	SearchFields: []string{"title", "authors.name"},
	Relations: map[string]query.Relation{
		"authors": {
			Table:      "authors",
			Pivot:      "book_author",
			LocalKey:   "book_id",
			ForeignKey: "author_id",
			Columns:    map[string]query.ColumnType{"name": query.Text, "about": query.Text},
		},
	},
	Aliases: map[string]string{"name": "authors.name"},
}

var bookColumns = strings.Join(model.Columns, ", ")

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) WithTx(tx pgx.Tx) RepositoryInterface {
	return &postgresRepository{db: tx}
}

func (r *postgresRepository) List(ctx context.Context, params query.Params) ([]model.Book, query.PageInfo, error) {
	return query.List[model.Book](ctx, r.db, Source, params)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	return r.getOne(ctx, "SELECT "+bookColumns+" FROM books WHERE id = $1", id)
}

func (r *postgresRepository) GetForUpdate(ctx context.Context, id int64) (*model.Book, error) {
	return r.getOne(ctx, "SELECT "+bookColumns+" FROM books WHERE id = $1 FOR UPDATE", id)
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	sql := `
		INSERT INTO books (title, subtitle, description, image_url, book_url, publisher,
		                   published_date, number_of_pages, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + bookColumns

	var created model.Book
	err := pgxscan.Get(ctx, r.db, &created, sql,
		b.Title, b.Subtitle, b.Description, b.ImageURL, b.BookURL, b.Publisher,
		b.PublishedDate, b.NumberOfPages, b.Language,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return &created, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	sql := `
		UPDATE books
		SET title = $1, subtitle = $2, description = $3, publisher = $4,
		    published_date = $5, number_of_pages = $6, language = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + bookColumns

	return r.getOne(ctx, sql,
		b.Title, b.Subtitle, b.Description, b.Publisher,
		b.PublishedDate, b.NumberOfPages, b.Language, b.ID,
	)
}

func (r *postgresRepository) UpdateRatings(ctx context.Context, id int64, ratings model.Ratings) (*model.Book, error) {
	payload, err := json.Marshal(ratings.OrEmpty())
	if err != nil {
		return nil, fmt.Errorf("failed to encode ratings: %w", err)
	}

	sql := "UPDATE books SET ratings = $1, updated_at = NOW() WHERE id = $2 RETURNING " + bookColumns
	return r.getOne(ctx, sql, payload, id)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) (*model.Book, error) {
	return r.getOne(ctx, "DELETE FROM books WHERE id = $1 RETURNING "+bookColumns, id)
}

func (r *postgresRepository) getOne(ctx context.Context, sql string, args ...any) (*model.Book, error) {
	var b model.Book
	if err := pgxscan.Get(ctx, r.db, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to query book: %w", err)
	}
	return &b, nil
}

// ════════════════════════════════════════════════════════════════
// AUTHORS
// ════════════════════════════════════════════════════════════════

func (r *postgresRepository) SyncAuthors(ctx context.Context, bookID int64, authorIDs []int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM book_author WHERE book_id = $1", bookID); err != nil {
		return fmt.Errorf("failed to detach authors: %w", err)
	}

	ids := unique(authorIDs)
	if len(ids) == 0 {
		return nil
	}

	rows := make([]any, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, goqu.Record{"book_id": bookID, "author_id": id})
	}

	sql, args, err := query.Dialect().Insert("book_author").Prepared(true).Rows(rows...).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build author attach: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if _, ok := database.ForeignKeyViolation(err); ok {
			return model.ErrAuthorsNotFound
		}
		return fmt.Errorf("failed to attach authors: %w", err)
	}
	return nil
}

type bookAuthorRow struct {
	BookID int64 `db:"book_id"`
	authormodel.Author
}

func (r *postgresRepository) LoadAuthors(ctx context.Context, books []model.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(books))
	for i := range books {
		ids = append(ids, books[i].ID)
		books[i].Authors = []authormodel.Author{}
	}

	cols := []any{goqu.T("book_author").Col("book_id")}
	for _, c := range authormodel.Columns {
		cols = append(cols, goqu.T("authors").Col(c))
	}

	sql, args, err := query.Dialect().From("authors").Prepared(true).
		InnerJoin(goqu.T("book_author"), goqu.On(goqu.T("book_author").Col("author_id").Eq(goqu.T("authors").Col("id")))).
		Select(cols...).
		Where(goqu.T("book_author").Col("book_id").In(ids)).
		Order(goqu.T("authors").Col("name").Asc(), goqu.T("authors").Col("id").Asc()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build author query: %w", err)
	}

	var rows []bookAuthorRow
	if err := pgxscan.Select(ctx, r.db, &rows, sql, args...); err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}

	index := make(map[int64]int, len(books))
	for i := range books {
		index[books[i].ID] = i
	}
	for _, row := range rows {
		if i, ok := index[row.BookID]; ok {
			books[i].Authors = append(books[i].Authors, row.Author)
		}
	}
	return nil
}

func (r *postgresRepository) MissingAuthors(ctx context.Context, authorIDs []int64) ([]int64, error) {
	ids := unique(authorIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	var found []int64
	if err := pgxscan.Select(ctx, r.db, &found, "SELECT id FROM authors WHERE id = ANY($1)", ids); err != nil {
		return nil, fmt.Errorf("failed to check authors: %w", err)
	}

	exists := make(map[int64]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}

	var missing []int64
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func unique(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
