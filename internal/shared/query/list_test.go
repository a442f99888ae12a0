package query

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/shared/apperror"
)

func bookSource() *Source {
	return &Source{
		Table:  "books",
		Select: []string{"id", "title"},
		Columns: map[string]ColumnType{
			"id":              Integer,
			"title":           Text,
			"number_of_pages": Integer,
			"published_date":  Date,
			"created_at":      Timestamp,
		},
		SearchFields: []string{"title", "authors.name"},
		Relations: map[string]Relation{
			"authors": {
				Table:      "authors",
				Pivot:      "book_author",
				LocalKey:   "book_id",
				ForeignKey: "author_id",
				Columns:    map[string]ColumnType{"name": Text},
			},
		},
		Aliases: map[string]string{"name": "authors.name"},
	}
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected an AppError, got %v", err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	return appErr.Fields
}

func TestBuild_SearchLocalAndRelated(t *testing.T) {
	stmt, err := bookSource().Build(Params{Search: "tolkien"})
	require.NoError(t, err)

	sql, args, err := stmt.Count.ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `SELECT COUNT(*) FROM "books"`)
	assert.Contains(t, sql, `"books"."title" ILIKE $1`)
	assert.Contains(t, sql, `EXISTS (SELECT 1 FROM "book_author" INNER JOIN "authors"`)
	assert.Contains(t, sql, `"book_author"."book_id" = "books"."id"`)
	assert.Contains(t, sql, `"authors"."name" ILIKE $2`)
	assert.Equal(t, []any{"%tolkien%", "%tolkien%"}, args)
}

func TestBuild_SearchEscapesWildcards(t *testing.T) {
	stmt, err := bookSource().Build(Params{Search: `50%_off\`})
	require.NoError(t, err)

	_, args, err := stmt.Count.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `%50\%\_off\\%`, args[0])
}

func TestBuild_BlankSearchIsNoSearch(t *testing.T) {
	blank, err := bookSource().Build(Params{Search: "   "})
	require.NoError(t, err)
	none, err := bookSource().Build(Params{})
	require.NoError(t, err)

	blankSQL, blankArgs, err := blank.Page.ToSQL()
	require.NoError(t, err)
	noneSQL, noneArgs, err := none.Page.ToSQL()
	require.NoError(t, err)

	assert.Equal(t, noneSQL, blankSQL)
	assert.Equal(t, noneArgs, blankArgs)
	assert.NotContains(t, blankSQL, "ILIKE")
}

func TestBuild_FiltersAreAndedInOrder(t *testing.T) {
	stmt, err := bookSource().Build(Params{Filters: []Filter{
		{Index: 0, Column: "number_of_pages", Operator: ">=", Value: "100"},
		{Index: 1, Column: "title", Operator: "like", Value: "The%"},
		{Index: 2, Column: "published_date", Operator: "<", Value: "2000-01-01"},
	}})
	require.NoError(t, err)

	sql, args, err := stmt.Count.ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `"books"."number_of_pages" >= $1`)
	assert.Contains(t, sql, `"books"."title" LIKE $2`)
	assert.Contains(t, sql, `"books"."published_date" < $3`)
	require.Len(t, args, 3)
	assert.Equal(t, int64(100), args[0])
	assert.Equal(t, "The%", args[1])
}

func TestBuild_BooleanFilter(t *testing.T) {
	src := &Source{
		Table:   "reading_histories",
		Select:  []string{"id"},
		Columns: map[string]ColumnType{"is_read": Boolean},
	}

	stmt, err := src.Build(Params{Filters: []Filter{{Column: "is_read", Operator: "=", Value: "true"}}})
	require.NoError(t, err)

	sql, args, err := stmt.Count.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `"reading_histories"."is_read" IS TRUE`)
	assert.Empty(t, args)
}

func TestBuild_RejectsFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		key    string
	}{
		{"unknown operator", Filter{Index: 0, Column: "title", Operator: "<>", Value: "x"}, "filter.0.operator"},
		{"injection attempt", Filter{Index: 1, Column: "title", Operator: "= 1 OR 1 =", Value: "x"}, "filter.1.operator"},
		{"column not allowed", Filter{Index: 0, Column: "password_hash", Operator: "=", Value: "x"}, "filter.0.column"},
		{"like on integer", Filter{Index: 2, Column: "number_of_pages", Operator: "like", Value: "1%"}, "filter.2.operator"},
		{"bad integer", Filter{Index: 0, Column: "number_of_pages", Operator: "=", Value: "many"}, "filter.0.value"},
		{"bad date", Filter{Index: 0, Column: "published_date", Operator: "=", Value: "yesterday"}, "filter.0.value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bookSource().Build(Params{Filters: []Filter{tt.filter}})
			require.Error(t, err)
			assert.Contains(t, fieldsOf(t, err), tt.key)
		})
	}
}

func TestBuild_DefaultSort(t *testing.T) {
	stmt, err := bookSource().Build(Params{})
	require.NoError(t, err)

	sql, args, err := stmt.Page.ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `ORDER BY "books"."created_at" DESC, "books"."id" DESC LIMIT $1`)
	assert.NotContains(t, sql, "OFFSET")
	assert.Equal(t, []any{int64(10)}, args)
}

func TestBuild_SortByRelatedColumnUsesSubquery(t *testing.T) {
	stmt, err := bookSource().Build(Params{Sort: &Sort{Column: "name", Order: "desc"}, Page: 2})
	require.NoError(t, err)

	sql, args, err := stmt.Page.ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `SELECT "books"."id", "books"."title" FROM "books"`)
	assert.Contains(t, sql, `ORDER BY (SELECT MIN("authors"."name") FROM "book_author" INNER JOIN "authors"`)
	assert.Contains(t, sql, `DESC NULLS LAST, "books"."id" DESC`)
	assert.NotContains(t, sql, `FROM "books" INNER JOIN`)
	assert.Equal(t, []any{int64(10), int64(10)}, args)

	qualified, err := bookSource().Build(Params{Sort: &Sort{Column: "authors.name", Order: "asc"}})
	require.NoError(t, err)
	sql, _, err = qualified.Page.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `ASC NULLS LAST, "books"."id" ASC`)
}

func TestBuild_RejectsUnknownSortColumn(t *testing.T) {
	for _, column := range []string{"password_hash", "authors.email", "publishers.name"} {
		_, err := bookSource().Build(Params{Sort: &Sort{Column: column, Order: "asc"}})
		require.Error(t, err, column)
		assert.Contains(t, fieldsOf(t, err), "sort.0.column")
	}
}

func TestBuild_ScopeIsApplied(t *testing.T) {
	src := &Source{
		Table:   "reviews",
		Select:  []string{"id"},
		Columns: map[string]ColumnType{"id": Integer},
	}
	scoped := src.WithScope(src.Col("book_id").Eq(int64(4)))

	stmt, err := scoped.Build(Params{})
	require.NoError(t, err)
	sql, args, err := stmt.Count.ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `"reviews"."book_id" = $1`)
	assert.Equal(t, []any{int64(4)}, args)
	assert.Empty(t, src.Scope, "WithScope must not modify the original source")
}

type bookRow struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
}

func TestList_LastPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "books"`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(25)))

	rows := pgxmock.NewRows([]string{"id", "title"})
	for i := int64(21); i <= 25; i++ {
		rows.AddRow(i, "Book")
	}
	mock.ExpectQuery(`SELECT "books"."id", "books"."title" FROM "books"`).
		WithArgs(int64(10), int64(20)).
		WillReturnRows(rows)

	items, info, err := List[bookRow](context.Background(), mock, bookSource(), Params{Page: 3, PerPage: 10})
	require.NoError(t, err)

	assert.Len(t, items, 5)
	assert.Equal(t, int64(21), items[0].ID)
	assert.Equal(t, 3, info.LastPage)
	assert.False(t, info.HasMorePages)
	assert.Equal(t, 25, info.Total)
	assert.Equal(t, 21, *info.FirstItem)
	assert.Equal(t, 25, *info.LastItem)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_BeyondLastPageSkipsPageQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "books"`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(25)))

	items, info, err := List[bookRow](context.Background(), mock, bookSource(), Params{Page: 4, PerPage: 10})
	require.NoError(t, err)

	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 0, info.Count)
	assert.Equal(t, 25, info.Total)
	assert.Equal(t, 3, info.LastPage)
	assert.Nil(t, info.FirstItem)
	assert.Nil(t, info.LastItem)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ValidationStopsBeforeQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, _, err = List[bookRow](context.Background(), mock, bookSource(), Params{
		Filters: []Filter{{Column: "title", Operator: "between", Value: "a"}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_CountFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("connection reset"))

	_, _, err = List[bookRow](context.Background(), mock, bookSource(), Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count books")
}

func TestList_HugePageIsEmptyWithTotals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "books"`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(25)))

	items, info, err := List[bookRow](context.Background(), mock, bookSource(), Params{Page: math.MaxInt, PerPage: 10})
	require.NoError(t, err)

	assert.Empty(t, items)
	assert.Equal(t, 25, info.Total)
	assert.Equal(t, 3, info.LastPage)
	assert.Nil(t, info.FirstItem)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuild_AliasWinsOverLocalColumn(t *testing.T) {
	src := bookSource()
	src.Columns["name"] = Text

	stmt, err := src.Build(Params{Sort: &Sort{Column: "name", Order: "asc"}})
	require.NoError(t, err)
	sql, _, err := stmt.Page.ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `ORDER BY (SELECT MIN("authors"."name")`)
	assert.NotContains(t, sql, `ORDER BY "books"."name"`)
}
