package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageInfo_TwentyFiveItems(t *testing.T) {
	first := NewPageInfo(25, 1, 10, 10)
	assert.Equal(t, 3, first.LastPage)
	assert.True(t, first.HasMorePages)
	require.NotNil(t, first.FirstItem)
	assert.Equal(t, 1, *first.FirstItem)
	assert.Equal(t, 10, *first.LastItem)

	second := NewPageInfo(25, 2, 10, 10)
	assert.True(t, second.HasMorePages)
	assert.Equal(t, 11, *second.FirstItem)
	assert.Equal(t, 20, *second.LastItem)

	last := NewPageInfo(25, 3, 10, 5)
	assert.False(t, last.HasMorePages)
	assert.Equal(t, 21, *last.FirstItem)
	assert.Equal(t, 25, *last.LastItem)
	assert.Equal(t, 5, last.Count)
}

func TestNewPageInfo_Empty(t *testing.T) {
	info := NewPageInfo(0, 1, 10, 0)

	assert.Equal(t, 1, info.LastPage)
	assert.False(t, info.HasMorePages)
	assert.Nil(t, info.FirstItem)
	assert.Nil(t, info.LastItem)
}

func TestNewPageInfo_PastLastPage(t *testing.T) {
	info := NewPageInfo(25, 7, 10, 0)

	assert.Equal(t, 7, info.CurrentPage)
	assert.Equal(t, 3, info.LastPage)
	assert.False(t, info.HasMorePages)
	assert.Equal(t, 25, info.Total)
	assert.Nil(t, info.FirstItem)
}

func TestNewPageInfo_HugePage(t *testing.T) {
	info := NewPageInfo(25, MaxPage+5, 10, 0)

	assert.Equal(t, MaxPage, info.CurrentPage)
	assert.Equal(t, 25, info.Total)
	assert.False(t, info.HasMorePages)
	assert.Nil(t, info.FirstItem)
	assert.Nil(t, info.LastItem)
}
