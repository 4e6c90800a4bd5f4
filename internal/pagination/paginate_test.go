package pagination

import (
	"fmt"
	"testing"

	"trip-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLaunches(n int) []models.Launch {
	launches := make([]models.Launch, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%d", n-i) // most recent first
		launches[i] = models.Launch{ID: id, Cursor: id}
	}
	return launches
}

func TestPaginateFirstPage(t *testing.T) {
	results := makeLaunches(5)

	conn, err := Paginate(results, "", 2)
	require.NoError(t, err)

	assert.Len(t, conn.Launches, 2)
	assert.Equal(t, "5", conn.Launches[0].ID)
	assert.Equal(t, "4", conn.Launches[1].ID)
	assert.Equal(t, "4", conn.Cursor, "cursor should be the last included item's cursor")
	assert.True(t, conn.HasMore)
}

// Walking the full set page by page must reconstruct it exactly, in order,
// with no duplicates or gaps, ending with HasMore=false.
func TestPaginateWalkReconstructsSet(t *testing.T) {
	results := makeLaunches(7)

	var collected []models.Launch
	after := ""
	for i := 0; ; i++ {
		require.Less(t, i, 10, "pagination did not terminate")

		conn, err := Paginate(results, after, 3)
		require.NoError(t, err)
		collected = append(collected, conn.Launches...)
		if !conn.HasMore {
			break
		}
		after = conn.Cursor
	}

	assert.Equal(t, results, collected)
}

func TestPaginateLastPageHasMoreFalse(t *testing.T) {
	results := makeLaunches(4)

	conn, err := Paginate(results, "2", 10)
	require.NoError(t, err)

	assert.Len(t, conn.Launches, 1)
	assert.Equal(t, "1", conn.Cursor)
	assert.False(t, conn.HasMore)
}

func TestPaginateAfterLastElement(t *testing.T) {
	results := makeLaunches(3)

	conn, err := Paginate(results, "1", 10)
	require.NoError(t, err)

	assert.Empty(t, conn.Launches)
	assert.Equal(t, "", conn.Cursor)
	assert.False(t, conn.HasMore)
}

func TestPaginateEmptySet(t *testing.T) {
	conn, err := Paginate(nil, "", 20)
	require.NoError(t, err)

	assert.Empty(t, conn.Launches)
	assert.Equal(t, "", conn.Cursor)
	assert.False(t, conn.HasMore)
}

func TestPaginateInvalidCursor(t *testing.T) {
	results := makeLaunches(3)

	_, err := Paginate(results, "no-such-cursor", 20)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestPaginatePageSizeDefaults(t *testing.T) {
	results := makeLaunches(150)

	conn, err := Paginate(results, "", 0)
	require.NoError(t, err)
	assert.Len(t, conn.Launches, DefaultPageSize, "non-positive pageSize falls back to default")

	conn, err = Paginate(results, "", -5)
	require.NoError(t, err)
	assert.Len(t, conn.Launches, DefaultPageSize)

	conn, err = Paginate(results, "", 500)
	require.NoError(t, err)
	assert.Len(t, conn.Launches, MaxPageSize, "oversized pageSize is clamped")
}
