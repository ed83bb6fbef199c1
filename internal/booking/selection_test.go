package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinetick/internal/seatmap"
)

func testMap(t *testing.T, occupied ...int) *seatmap.Map {
	t.Helper()
	seats, err := seatmap.Generate(seatmap.DefaultLayout(), seatmap.FixedOccupancy(occupied...))
	require.NoError(t, err)
	return seatmap.NewMap(seats)
}

func TestToggleTwiceRestoresSelection(t *testing.T) {
	m := testMap(t)
	sel := NewSelection(MaxSeats)
	_, err := sel.Toggle(m, 1)
	require.NoError(t, err)
	before := sel.IDs()

	res, err := sel.Toggle(m, 12)
	require.NoError(t, err)
	assert.Equal(t, Added, res)
	res, err = sel.Toggle(m, 12)
	require.NoError(t, err)
	assert.Equal(t, Removed, res)

	assert.Equal(t, before, sel.IDs())
}

func TestToggleCapsAtTen(t *testing.T) {
	m := testMap(t)
	sel := NewSelection(MaxSeats)
	for id := 1; id <= 10; id++ {
		res, err := sel.Toggle(m, id)
		require.NoError(t, err)
		require.Equal(t, Added, res)
	}

	res, err := sel.Toggle(m, 11)
	require.NoError(t, err)
	assert.Equal(t, Rejected, res)
	assert.Equal(t, 10, sel.Len())
	assert.False(t, sel.Contains(11))

	// removing still works at the cap
	res, err = sel.Toggle(m, 3)
	require.NoError(t, err)
	assert.Equal(t, Removed, res)
	assert.Equal(t, 9, sel.Len())
}

func TestToggleOccupiedSeat(t *testing.T) {
	m := testMap(t, 5)
	sel := NewSelection(0)
	_, err := sel.Toggle(m, 5)
	assert.ErrorIs(t, err, ErrSeatOccupied)
	assert.Zero(t, sel.Len())
}

func TestToggleUnknownSeat(t *testing.T) {
	m := testMap(t)
	sel := NewSelection(0)
	// 41 is a gap in the default layout
	_, err := sel.Toggle(m, 41)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = sel.Toggle(m, 1000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectionKeepsOrder(t *testing.T) {
	m := testMap(t)
	sel := &Selection{}
	for _, id := range []int{30, 2, 17} {
		_, err := sel.Toggle(m, id)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{30, 2, 17}, sel.IDs())
	sel.Clear()
	assert.Empty(t, sel.IDs())
}
