package gqlconnection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateFirstN(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	first := 2
	conn, err := Paginate(items, Args{First: &first})
	require.NoError(t, err)
	require.Len(t, conn.Edges, 2)
	assert.Equal(t, "a", conn.Edges[0].Node)
	assert.Equal(t, "b", conn.Edges[1].Node)
	assert.True(t, conn.PageInfo.HasNextPage)
	assert.False(t, conn.PageInfo.HasPreviousPage)
}

func TestPaginateAfterCursor(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	first := 2
	conn1, err := Paginate(items, Args{First: &first})
	require.NoError(t, err)

	after := conn1.PageInfo.EndCursor
	conn2, err := Paginate(items, Args{First: &first, After: after})
	require.NoError(t, err)
	require.Len(t, conn2.Edges, 2)
	assert.Equal(t, "c", conn2.Edges[0].Node)
	assert.Equal(t, "d", conn2.Edges[1].Node)
	assert.True(t, conn2.PageInfo.HasPreviousPage)
}

func TestPaginateRejectsFirstAndLastTogether(t *testing.T) {
	first, last := 1, 1
	_, err := Paginate([]int{1, 2, 3}, Args{First: &first, Last: &last})
	assert.Error(t, err)
}

func TestPaginateLastN(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	last := 2
	conn, err := Paginate(items, Args{Last: &last})
	require.NoError(t, err)
	require.Len(t, conn.Edges, 2)
	assert.Equal(t, 4, conn.Edges[0].Node)
	assert.Equal(t, 5, conn.Edges[1].Node)
	assert.False(t, conn.PageInfo.HasNextPage)
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := EncodeCursor(7)
	offset, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, 7, offset)
}
