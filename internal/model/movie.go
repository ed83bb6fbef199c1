package model

import "strings"

// Movie is an immutable catalog record.  Genres keep the catalog's display
// order; Score is the 0–10 audience score shown on movie cards.
type Movie struct {
	ID              uint64   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Genres          []string `json:"genres"`
	DurationMinutes int      `json:"duration_minutes"`
	Rating          string   `json:"rating"` // age rating tag, e.g. "13+"
	Score           float64  `json:"score"`
	Year            int      `json:"year"`
	Image           string   `json:"image,omitempty"`
}

// GenreLine joins the genres the way the catalog cards print them.
func (m Movie) GenreLine() string { return strings.Join(m.Genres, ", ") }
