package repository

import (
	"context"
	"errors"
	"slices"

	"github.com/iliyamo/cinetick/internal/model"
)

// ErrMovieNotFound indicates an unknown movie ID.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo serves the static catalog.
type MovieRepo struct {
	lat    Latency
	movies []model.Movie
}

// NewMovieRepo returns a repository over the seeded catalog.
func NewMovieRepo(lat Latency) *MovieRepo {
	return &MovieRepo{lat: lat, movies: seedMovies()}
}

// NewMovieRepoWith serves movies instead of the seeded catalog.
func NewMovieRepoWith(lat Latency, movies []model.Movie) *MovieRepo {
	return &MovieRepo{lat: lat, movies: slices.Clone(movies)}
}

// List returns every movie in catalog order.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return nil, err
	}
	return r.all(), nil
}

// all skips the latency; other repositories use it for joins.
func (r *MovieRepo) all() []model.Movie {
	out := make([]model.Movie, len(r.movies))
	for i, m := range r.movies {
		m.Genres = slices.Clone(m.Genres)
		out[i] = m
	}
	return out
}

// GetByID returns a single movie.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return model.Movie{}, err
	}
	return r.lookup(id)
}

func (r *MovieRepo) lookup(id uint64) (model.Movie, error) {
	for _, m := range r.movies {
		if m.ID == id {
			m.Genres = slices.Clone(m.Genres)
			return m, nil
		}
	}
	return model.Movie{}, ErrMovieNotFound
}

func seedMovies() []model.Movie {
	return []model.Movie{
		{ID: 1, Title: "Oppenheimer", Genres: []string{"Drama", "Historia"}, DurationMinutes: 180, Rating: "13+", Score: 9.2, Year: 2023,
			Description: "La historia del físico J. Robert Oppenheimer y su papel en el desarrollo de la bomba atómica.", Image: "/images/oppenheimer.jpg"},
		{ID: 2, Title: "Avatar", Genres: []string{"Ciencia Ficción", "Aventura"}, DurationMinutes: 162, Rating: "13+", Score: 8.7, Year: 2009,
			Description: "Un marine parapléjico es enviado a la luna Pandora en una misión única.", Image: "/images/avatar.jpg"},
		{ID: 3, Title: "León: El Profesional", Genres: []string{"Acción", "Drama"}, DurationMinutes: 110, Rating: "18+", Score: 8.5, Year: 1994,
			Description: "Un asesino a sueldo acoge a una niña de doce años cuya familia ha sido asesinada.", Image: "/images/leon.jpg"},
		{ID: 4, Title: "Black Swan", Genres: []string{"Drama", "Thriller"}, DurationMinutes: 108, Rating: "18+", Score: 8.0, Year: 2010,
			Description: "Una bailarina compite por el papel principal de El lago de los cisnes.", Image: "/images/black-swan.jpg"},
		{ID: 5, Title: "León: Versión Integral", Genres: []string{"Acción", "Drama"}, DurationMinutes: 133, Rating: "18+", Score: 8.6, Year: 1994,
			Description: "La versión extendida de la historia de León y Mathilda.", Image: "/images/leon-integral.jpg"},
		{ID: 6, Title: "Gladiator II", Genres: []string{"Acción", "Drama"}, DurationMinutes: 155, Rating: "16+", Score: 8.8, Year: 2024,
			Description: "Años después de la muerte de Máximo, Lucio debe entrar al Coliseo.", Image: "/images/gladiator-2.jpg"},
		{ID: 7, Title: "Dune: Parte Dos", Genres: []string{"Ciencia Ficción"}, DurationMinutes: 166, Rating: "13+", Score: 9.0, Year: 2024,
			Description: "Paul Atreides se une a Chani y a los Fremen en su venganza.", Image: "/images/dune-2.jpg"},
		{ID: 8, Title: "Deadpool & Wolverine", Genres: []string{"Acción", "Comedia"}, DurationMinutes: 127, Rating: "18+", Score: 8.7, Year: 2024,
			Description: "Deadpool recluta a una versión reticente de Wolverine.", Image: "/images/deadpool-wolverine.jpg"},
	}
}
