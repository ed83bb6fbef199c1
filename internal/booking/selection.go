package booking

import (
	"fmt"
	"slices"

	"github.com/iliyamo/cinetick/internal/seatmap"
)

// MaxSeats caps a single purchase.
const MaxSeats = 10

// ToggleResult tells what a toggle did.
type ToggleResult string

const (
	Added    ToggleResult = "added"
	Removed  ToggleResult = "removed"
	Rejected ToggleResult = "rejected" // selection already full
)

// Selection is the ordered set of seats chosen for the active showtime.
// The zero value is an empty selection with the default cap.
type Selection struct {
	ids []int
	max int
}

// NewSelection returns an empty selection capped at max seats.  A
// non-positive max falls back to MaxSeats.
func NewSelection(max int) *Selection {
	if max <= 0 || max > MaxSeats {
		max = MaxSeats
	}
	return &Selection{max: max}
}

func (s *Selection) limit() int {
	if s.max <= 0 {
		return MaxSeats
	}
	return s.max
}

// Toggle removes seatID when selected, otherwise adds it if the seat is
// free and the cap is not reached.  Hitting the cap is not an error: the
// result is Rejected and the selection is unchanged.
func (s *Selection) Toggle(m *seatmap.Map, seatID int) (ToggleResult, error) {
	if i := slices.Index(s.ids, seatID); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return Removed, nil
	}
	seat, ok := m.Seat(seatID)
	if !ok {
		return "", fmt.Errorf("%w: seat %d", ErrNotFound, seatID)
	}
	if seat.Occupied {
		return "", fmt.Errorf("%w: %s", ErrSeatOccupied, seat.Label())
	}
	if len(s.ids) >= s.limit() {
		return Rejected, nil
	}
	s.ids = append(s.ids, seatID)
	return Added, nil
}

// Contains reports whether seatID is selected.
func (s *Selection) Contains(seatID int) bool { return slices.Contains(s.ids, seatID) }

// IDs returns the selected seat IDs in selection order.
func (s *Selection) IDs() []int { return slices.Clone(s.ids) }

// Len is the number of selected seats.
func (s *Selection) Len() int { return len(s.ids) }

// Clear empties the selection.
func (s *Selection) Clear() { s.ids = nil }
