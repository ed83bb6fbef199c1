package catalog

import "github.com/iliyamo/cinetick/internal/model"

// Facets lists the values the filter panel offers.
type Facets struct {
	Genres   []string `json:"genres"`
	Ratings  []string `json:"ratings"`
	YearFrom int      `json:"year_from"`
	YearTo   int      `json:"year_to"`
}

// FacetsOf collects distinct genres and ratings in first-seen order and the
// year bounds of movies.
func FacetsOf(movies []model.Movie) Facets {
	f := Facets{Genres: []string{}, Ratings: []string{}}
	seenG := map[string]bool{}
	seenR := map[string]bool{}
	for i, m := range movies {
		for _, g := range m.Genres {
			if !seenG[g] {
				seenG[g] = true
				f.Genres = append(f.Genres, g)
			}
		}
		if !seenR[m.Rating] {
			seenR[m.Rating] = true
			f.Ratings = append(f.Ratings, m.Rating)
		}
		if i == 0 || m.Year < f.YearFrom {
			f.YearFrom = m.Year
		}
		if i == 0 || m.Year > f.YearTo {
			f.YearTo = m.Year
		}
	}
	return f
}
