package catalog

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinetick/internal/model"
)

func fixtureMovies() []model.Movie {
	return []model.Movie{
		{ID: 1, Title: "Oppenheimer", Genres: []string{"Drama", "Historia"}, Rating: "13+", Score: 9.2, Year: 2023},
		{ID: 2, Title: "Avatar", Genres: []string{"Ciencia Ficción", "Aventura"}, Rating: "13+", Score: 8.7, Year: 2009},
		{ID: 3, Title: "León: El Profesional", Genres: []string{"Acción", "Drama"}, Rating: "18+", Score: 8.5, Year: 1994},
		{ID: 4, Title: "Black Swan", Genres: []string{"Drama", "Thriller"}, Rating: "18+", Score: 8.0, Year: 2010},
		{ID: 5, Title: "León: Versión Integral", Genres: []string{"Acción", "Drama"}, Rating: "18+", Score: 8.6, Year: 1994},
		{ID: 6, Title: "Gladiator II", Genres: []string{"Acción", "Drama"}, Rating: "16+", Score: 8.8, Year: 2024},
		{ID: 7, Title: "Dune: Parte Dos", Genres: []string{"Ciencia Ficción"}, Rating: "13+", Score: 9.0, Year: 2024},
		{ID: 8, Title: "Deadpool & Wolverine", Genres: []string{"Acción", "Comedia"}, Rating: "18+", Score: 8.7, Year: 2024},
	}
}

func ids(movies []model.Movie) []uint64 {
	out := make([]uint64, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}

func TestFilter_EmptyQueryKeepsCatalog(t *testing.T) {
	movies := fixtureMovies()
	assert.Equal(t, ids(movies), ids(Filter(movies, Query{})))
}

func TestFilter_TextMatchesTitleOrGenre(t *testing.T) {
	movies := fixtureMovies()

	assert.Equal(t, []uint64{3, 5}, ids(Filter(movies, Query{Text: "LEÓN"})))
	assert.Equal(t, []uint64{4}, ids(Filter(movies, Query{Text: "thrill"})))
	assert.Empty(t, Filter(movies, Query{Text: "matrix"}))
}

func TestFilter_CombinedPredicates(t *testing.T) {
	movies := fixtureMovies()
	q := Query{
		Genres:   []string{"acción"},
		Ratings:  []string{"18+"},
		MinScore: 8.6,
		YearFrom: 1990,
		YearTo:   2024,
	}
	assert.Equal(t, []uint64{5, 8}, ids(Filter(movies, q)))
}

func TestFilter_ResultIsSubsetSatisfyingEveryPredicate(t *testing.T) {
	movies := fixtureMovies()
	queries := []Query{
		{Text: "dr"},
		{Genres: []string{"Drama", "Comedia"}},
		{Ratings: []string{"13+", "16+"}},
		{MinScore: 8.7},
		{YearFrom: 2000, YearTo: 2010},
		{Text: "a", Genres: []string{"Aventura"}, MinScore: 8, YearFrom: 2005},
		{YearTo: 1990},
	}
	for _, q := range queries {
		got := Filter(movies, q)
		for _, m := range got {
			assert.Contains(t, movies, m)
			assert.True(t, Matches(m, q), "movie %d violates %+v", m.ID, q)
		}
		for _, m := range movies {
			if Matches(m, q) {
				assert.Contains(t, got, m)
			}
		}
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	movies := fixtureMovies()
	before := slices.Clone(movies)
	_ = Search(movies, Query{MinScore: 8.5}, ByTitle, Asc)
	assert.Equal(t, before, movies)
}

func TestSort_YearKeepsCatalogOrderAmongTies(t *testing.T) {
	movies := fixtureMovies()

	asc := Sort(movies, ByYear, Asc)
	assert.Equal(t, []uint64{3, 5, 2, 4, 1, 6, 7, 8}, ids(asc))

	desc := Sort(movies, ByYear, Desc)
	assert.Equal(t, []uint64{6, 7, 8, 1, 4, 2, 3, 5}, ids(desc))
}

func TestSort_DescendingScoreTies(t *testing.T) {
	movies := []model.Movie{{ID: 1, Score: 8}, {ID: 2, Score: 9}, {ID: 3, Score: 8}}
	assert.Equal(t, []uint64{2, 1, 3}, ids(Sort(movies, ByScore, Desc)))
	assert.Equal(t, []uint64{1, 3, 2}, ids(Sort(movies, ByScore, Asc)))
}

func TestSort_TitleUsesCollation(t *testing.T) {
	got := Sort(fixtureMovies(), ByTitle, Asc)
	assert.Equal(t, []uint64{2, 4, 8, 7, 6, 3, 5, 1}, ids(got))
}

func TestSort_Idempotent(t *testing.T) {
	movies := fixtureMovies()
	for _, key := range []SortKey{ByTitle, ByYear, ByScore} {
		for _, order := range []Order{Asc, Desc} {
			once := Sort(movies, key, order)
			assert.Equal(t, ids(once), ids(Sort(movies, key, order)), key)
			assert.Equal(t, ids(once), ids(Sort(once, key, order)), key)
		}
	}
}

// Reversing the order reverses the sequence whenever the key has no ties.
func TestSort_DescendingReversesDistinctKeys(t *testing.T) {
	movies := fixtureMovies()
	asc := Sort(movies, ByTitle, Asc)
	slices.Reverse(asc)
	assert.Equal(t, ids(asc), ids(Sort(movies, ByTitle, Desc)))
}

func TestParseSortKeyAndOrder(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, ByScore, k)

	k, err = ParseSortKey("Title")
	require.NoError(t, err)
	assert.Equal(t, ByTitle, k)

	_, err = ParseSortKey("duration")
	assert.Error(t, err)

	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, Desc, o)

	_, err = ParseOrder("sideways")
	assert.Error(t, err)
}

func TestFacetsOf(t *testing.T) {
	f := FacetsOf(fixtureMovies())
	assert.Equal(t, []string{"Drama", "Historia", "Ciencia Ficción", "Aventura", "Acción", "Thriller", "Comedia"}, f.Genres)
	assert.Equal(t, []string{"13+", "18+", "16+"}, f.Ratings)
	assert.Equal(t, 1994, f.YearFrom)
	assert.Equal(t, 2024, f.YearTo)
}
