package model

import "fmt"

// Zone determines the unit price of a seat.
type Zone string

const (
	ZoneStandard Zone = "standard"
	ZonePremium  Zone = "premium"
)

// Seat describes one position of a generated seat map.  Occupied is fixed
// when the map is generated and never refreshed.
//
// Fields:
//  ID       – row*cols + col + 1 for the generating layout.
//  Row      – row label (A, B, ...).
//  Number   – 1-based column; gap columns are skipped, not renumbered.
//  Occupied – true when another customer already holds the seat.
//  Zone     – standard or premium, derived from the column.
type Seat struct {
	ID       int    `json:"id"`
	Row      string `json:"row"`
	Number   int    `json:"number"`
	Occupied bool   `json:"occupied"`
	Zone     Zone   `json:"zone"`
}

// Label renders the seat the way tickets print it, e.g. "C7".
func (s Seat) Label() string { return fmt.Sprintf("%s%d", s.Row, s.Number) }
