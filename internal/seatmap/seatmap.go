package seatmap

import "github.com/iliyamo/cinetick/internal/model"

// Generate lays out the seats of l row by row, left to right, skipping gap
// cells.  Occupancy is decided once per seat and frozen in the result.
func Generate(l Layout, occ Occupancy) ([]model.Seat, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if occ == nil {
		occ = NoOccupancy()
	}
	seats := make([]model.Seat, 0, l.Capacity())
	for row := 0; row < l.Rows; row++ {
		label := RowLabel(row)
		for col := 0; col < l.Cols; col++ {
			if l.IsGap(row, col) {
				continue
			}
			id := l.SeatID(row, col)
			seats = append(seats, model.Seat{
				ID:       id,
				Row:      label,
				Number:   col + 1,
				Occupied: occ.Occupied(id),
				Zone:     l.ZoneOf(col + 1),
			})
		}
	}
	return seats, nil
}

// Map is a frozen seat map indexed by seat ID.
type Map struct {
	seats []model.Seat
	index map[int]int
}

// NewMap indexes seats.  The slice is copied so later changes by the caller
// do not leak into the map.
func NewMap(seats []model.Seat) *Map {
	m := &Map{
		seats: append([]model.Seat(nil), seats...),
		index: make(map[int]int, len(seats)),
	}
	for i, s := range m.seats {
		m.index[s.ID] = i
	}
	return m
}

// Seat looks up a seat by ID.
func (m *Map) Seat(id int) (model.Seat, bool) {
	i, ok := m.index[id]
	if !ok {
		return model.Seat{}, false
	}
	return m.seats[i], true
}

// Seats returns a copy of all seats in layout order.
func (m *Map) Seats() []model.Seat { return append([]model.Seat(nil), m.seats...) }

// Len is the number of seats.
func (m *Map) Len() int { return len(m.seats) }

// Available counts the seats that are not occupied.
func (m *Map) Available() int {
	n := 0
	for _, s := range m.seats {
		if !s.Occupied {
			n++
		}
	}
	return n
}
