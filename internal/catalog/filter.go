// Package catalog filters and sorts the movie catalog.  Every function is
// pure: inputs are never modified and results only depend on arguments.
package catalog

import (
	"strings"

	"github.com/iliyamo/cinetick/internal/model"
)

// Query holds the active filter predicates.  Zero values disable a
// predicate, except YearTo where zero means "no upper bound".
type Query struct {
	Text     string
	Genres   []string
	Ratings  []string
	MinScore float64
	YearFrom int
	YearTo   int
}

// Filter returns the movies satisfying every active predicate, in catalog
// order.
func Filter(movies []model.Movie, q Query) []model.Movie {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	genres := lowerSet(q.Genres)
	ratings := make(map[string]bool, len(q.Ratings))
	for _, r := range q.Ratings {
		if r = strings.TrimSpace(r); r != "" {
			ratings[r] = true
		}
	}

	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if text != "" && !matchesText(m, text) {
			continue
		}
		if len(genres) > 0 && !hasAnyGenre(m, genres) {
			continue
		}
		if len(ratings) > 0 && !ratings[m.Rating] {
			continue
		}
		if m.Score < q.MinScore {
			continue
		}
		if m.Year < q.YearFrom || (q.YearTo > 0 && m.Year > q.YearTo) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Matches reports whether a single movie passes q.
func Matches(m model.Movie, q Query) bool {
	return len(Filter([]model.Movie{m}, q)) == 1
}

func matchesText(m model.Movie, text string) bool {
	if strings.Contains(strings.ToLower(m.Title), text) {
		return true
	}
	return strings.Contains(strings.ToLower(m.GenreLine()), text)
}

func hasAnyGenre(m model.Movie, want map[string]bool) bool {
	for _, g := range m.Genres {
		if want[strings.ToLower(g)] {
			return true
		}
	}
	return false
}

func lowerSet(vals []string) map[string]bool {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = true
		}
	}
	return set
}
