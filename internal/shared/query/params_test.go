package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/shared/apperror"
)

func TestParseParams_Defaults(t *testing.T) {
	p, err := ParseParams(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Empty(t, p.Search)
	assert.Nil(t, p.Sort)
	assert.Empty(t, p.Filters)
}

func TestParseParams_ClampsPageSize(t *testing.T) {
	p, err := ParseParams(url.Values{"first": {"500"}, "page": {"3"}})
	require.NoError(t, err)

	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, 3, p.Page)
}

func TestParseParams_InvalidPaging(t *testing.T) {
	tests := []struct {
		values url.Values
		key    string
	}{
		{url.Values{"first": {"ten"}}, "first"},
		{url.Values{"first": {"0"}}, "first"},
		{url.Values{"page": {"-1"}}, "page"},
		{url.Values{"page": {"1.5"}}, "page"},
	}

	for _, tt := range tests {
		_, err := ParseParams(tt.values)
		require.Error(t, err, tt.values.Encode())
		assert.Contains(t, fieldsOf(t, err), tt.key)
	}
}

func TestParseParams_Sort(t *testing.T) {
	p, err := ParseParams(url.Values{"sort[0][column]": {"title"}, "sort[0][order]": {"DESC"}})
	require.NoError(t, err)
	require.NotNil(t, p.Sort)
	assert.Equal(t, Sort{Column: "title", Order: "desc"}, *p.Sort)

	p, err = ParseParams(url.Values{"sort[0][column]": {"title"}})
	require.NoError(t, err)
	assert.Equal(t, "asc", p.Sort.Order)

	_, err = ParseParams(url.Values{"sort[0][column]": {"title"}, "sort[0][order]": {"sideways"}})
	require.Error(t, err)
	assert.Contains(t, fieldsOf(t, err), "sort.0.order")

	_, err = ParseParams(url.Values{"sort[0][order]": {"asc"}})
	require.Error(t, err)
	assert.Contains(t, fieldsOf(t, err), "sort.0.column")
}

func TestParseParams_FiltersInIndexOrder(t *testing.T) {
	p, err := ParseParams(url.Values{
		"filter[2][column]":   {"is_read"},
		"filter[2][operator]": {"="},
		"filter[2][value]":    {"true"},
		"filter[0][column]":   {"book_id"},
		"filter[0][operator]": {"LIKE"},
		"filter[0][value]":    {""},
		"search":              {"  dune "},
	})
	require.NoError(t, err)

	require.Len(t, p.Filters, 2)
	assert.Equal(t, Filter{Index: 0, Column: "book_id", Operator: "like", Value: ""}, p.Filters[0])
	assert.Equal(t, Filter{Index: 2, Column: "is_read", Operator: "=", Value: "true"}, p.Filters[1])
	assert.Equal(t, "dune", p.Search)
}

func TestParseParams_IncompleteFilter(t *testing.T) {
	_, err := ParseParams(url.Values{"filter[1][column]": {"title"}})
	require.Error(t, err)

	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "filter.1.operator")
	assert.Contains(t, fields, "filter.1.value")
	assert.NotContains(t, fields, "filter.1.column")
}

func TestOptionalID(t *testing.T) {
	id, err := OptionalID(url.Values{"user_id": {"7"}}, "user_id")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(7), *id)

	id, err = OptionalID(url.Values{}, "user_id")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = OptionalID(url.Values{"book_id": {"x"}}, "book_id")
	require.Error(t, err)
	assert.Contains(t, apperror.From(err).Fields, "book_id")
}

func TestParseParams_HugePageIsClamped(t *testing.T) {
	p, err := ParseParams(url.Values{"page": {"1844674407370955162"}})
	require.NoError(t, err)

	assert.Equal(t, MaxPage, p.Page)
	assert.Positive(t, p.offset())
}
