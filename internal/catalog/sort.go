package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iliyamo/cinetick/internal/model"
)

// SortKey selects the field movies are ordered by.
type SortKey string

const (
	ByTitle SortKey = "title"
	ByYear  SortKey = "year"
	ByScore SortKey = "score"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortKey accepts title, year or score.  An empty string yields the
// catalog default, score.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return ByScore, nil
	case ByTitle, ByYear, ByScore:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ParseOrder accepts asc or desc.  An empty string yields desc.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Desc, nil
	case Asc, Desc:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// titles are Spanish, so "León" sorts next to "Leon" rather than after "Z".
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Spanish, collate.IgnoreCase)
)

func compareTitles(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

func compareBy(key SortKey, a, b model.Movie) int {
	switch key {
	case ByTitle:
		return compareTitles(a.Title, b.Title)
	case ByYear:
		return cmp.Compare(a.Year, b.Year)
	default:
		return cmp.Compare(a.Score, b.Score)
	}
}

// Sort returns a new slice ordered by key.  Ties keep their input order in
// both directions.
func Sort(movies []model.Movie, key SortKey, order Order) []model.Movie {
	out := slices.Clone(movies)
	sign := 1
	if order == Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b model.Movie) int {
		return sign * compareBy(key, a, b)
	})
	return out
}

// Search is Filter followed by Sort.
func Search(movies []model.Movie, q Query, key SortKey, order Order) []model.Movie {
	return Sort(Filter(movies, q), key, order)
}
