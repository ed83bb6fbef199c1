package model

// Showtime is a scheduled screening of a movie in a theater room.  The
// registry is static for the lifetime of the process; the calendar date is
// chosen separately in the booking flow.
//
// Fields:
//  ID      – unique across all movies.
//  MovieID – owning movie.
//  Time    – time of day in 24h "HH:MM" form.
//  Theater – room label, e.g. "Sala 5".
//  Format  – projection format tag (Regular 2D, Regular 3D, IMAX).
//  Title   – movie title, filled in by listings only.
type Showtime struct {
	ID      uint64 `json:"id"`
	MovieID uint64 `json:"movie_id"`
	Time    string `json:"time"`
	Theater string `json:"theater"`
	Format  string `json:"format"`
	Title   string `json:"title,omitempty"`
}
