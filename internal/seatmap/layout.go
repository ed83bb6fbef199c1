// Package seatmap generates the seat grid of a theater room.  Generation is
// pure: the same layout and occupancy source always yield the same seats.
package seatmap

import (
	"errors"
	"fmt"

	"github.com/iliyamo/cinetick/internal/model"
)

// ErrInvalidLayout is returned for layouts with non-positive dimensions or
// gaps outside the grid.
var ErrInvalidLayout = errors.New("invalid seat layout")

// Position addresses a grid cell with zero-based coordinates.
type Position struct {
	Row int
	Col int
}

// Layout describes the fixed topology of a room.  PremiumFrom and
// PremiumTo are 1-based inclusive column bounds of the premium zone.
type Layout struct {
	Rows        int
	Cols        int
	Gaps        []Position
	PremiumFrom int
	PremiumTo   int
}

// DefaultLayout is the 10x10 room with four aisle gaps on the outer
// columns of rows E and F.  Columns 4 to 7 are premium.
func DefaultLayout() Layout {
	return Layout{
		Rows: 10,
		Cols: 10,
		Gaps: []Position{
			{Row: 4, Col: 0}, {Row: 4, Col: 9},
			{Row: 5, Col: 0}, {Row: 5, Col: 9},
		},
		PremiumFrom: 4,
		PremiumTo:   7,
	}
}

// Validate checks the shape of the layout.
func (l Layout) Validate() error {
	if l.Rows <= 0 || l.Cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidLayout, l.Rows, l.Cols)
	}
	for _, g := range l.Gaps {
		if g.Row < 0 || g.Row >= l.Rows || g.Col < 0 || g.Col >= l.Cols {
			return fmt.Errorf("%w: gap %d,%d outside grid", ErrInvalidLayout, g.Row, g.Col)
		}
	}
	return nil
}

// IsGap reports whether the zero-based cell is an aisle.
func (l Layout) IsGap(row, col int) bool {
	for _, g := range l.Gaps {
		if g.Row == row && g.Col == col {
			return true
		}
	}
	return false
}

// Capacity is the number of seats the layout produces.
func (l Layout) Capacity() int {
	seen := make(map[Position]bool, len(l.Gaps))
	for _, g := range l.Gaps {
		seen[g] = true
	}
	return l.Rows*l.Cols - len(seen)
}

// ZoneOf returns the zone of a 1-based column.
func (l Layout) ZoneOf(col int) model.Zone {
	if col >= l.PremiumFrom && col <= l.PremiumTo {
		return model.ZonePremium
	}
	return model.ZoneStandard
}

// SeatID is the identifier of the zero-based cell.
func (l Layout) SeatID(row, col int) int { return row*l.Cols + col + 1 }

// RowLabel converts a zero-based row index to a spreadsheet style label:
// A..Z, then AA, AB and so on.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
