package seatmap

import "math/rand/v2"

// DefaultOccupancyRate is the share of seats marked as taken by the mock
// backend.
const DefaultOccupancyRate = 0.3

// Occupancy decides whether a seat is taken.  Generate asks exactly once
// per seat, in ascending seat ID order, so stateful sources stay
// reproducible.
type Occupancy interface {
	Occupied(seatID int) bool
}

// OccupancyFunc adapts a function to Occupancy.
type OccupancyFunc func(seatID int) bool

func (f OccupancyFunc) Occupied(seatID int) bool { return f(seatID) }

// RandomOccupancy marks each seat independently with probability rate.
// Pass a seeded generator to get a reproducible map.
func RandomOccupancy(rate float64, rng *rand.Rand) Occupancy {
	return OccupancyFunc(func(int) bool { return rng.Float64() < rate })
}

// FixedOccupancy marks exactly the given seat IDs.  It stands in for a real
// reservation ledger.
func FixedOccupancy(ids ...int) Occupancy {
	taken := make(map[int]bool, len(ids))
	for _, id := range ids {
		taken[id] = true
	}
	return OccupancyFunc(func(id int) bool { return taken[id] })
}

// NoOccupancy leaves every seat free.
func NoOccupancy() Occupancy { return OccupancyFunc(func(int) bool { return false }) }
