package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/cinetick/internal/model"
)

// ErrNotRecommended is returned for feedback on a movie that is not in the
// user's current list.
var ErrNotRecommended = errors.New("movie is not among the recommendations")

// MovieLister lists the catalog.
type MovieLister interface {
	List(ctx context.Context) ([]model.Movie, error)
}

type seedRecommendation struct {
	movieID uint64
	match   int
	reason  string
}

var baseRecommendations = []seedRecommendation{
	{3, 95, "Basado en tus gustos de acción y drama"},
	{4, 87, "Porque te gustan los thrillers psicológicos"},
	{2, 82, "Basado en tu interés por la ciencia ficción"},
}

// RecommendationService keeps a recommendation list per signed-in user.
// Negative feedback removes a movie; refreshing restores the full list in
// a new order after a simulated computation delay.
type RecommendationService struct {
	movies MovieLister
	delay  time.Duration

	mu    sync.Mutex
	rng   *rand.Rand
	lists map[uint64][]model.Recommendation
}

func NewRecommendationService(movies MovieLister, refreshDelay time.Duration, seed uint64) *RecommendationService {
	return &RecommendationService{
		movies: movies,
		delay:  refreshDelay,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		lists:  map[uint64][]model.Recommendation{},
	}
}

func (s *RecommendationService) base(ctx context.Context) ([]model.Recommendation, error) {
	all, err := s.movies.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Movie, len(all))
	for _, m := range all {
		byID[m.ID] = m
	}
	out := make([]model.Recommendation, 0, len(baseRecommendations))
	for _, b := range baseRecommendations {
		m, ok := byID[b.movieID]
		if !ok {
			continue
		}
		out = append(out, model.Recommendation{
			MovieID:         m.ID,
			Title:           m.Title,
			Image:           m.Image,
			MatchPercentage: b.match,
			Reason:          b.reason,
		})
	}
	return out, nil
}

// List returns the current recommendations of userID.
func (s *RecommendationService) List(ctx context.Context, userID uint64) ([]model.Recommendation, error) {
	s.mu.Lock()
	list, ok := s.lists[userID]
	s.mu.Unlock()
	if ok {
		return slices.Clone(list), nil
	}
	list, err := s.base(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.lists[userID]; ok {
		return slices.Clone(cur), nil
	}
	s.lists[userID] = list
	return slices.Clone(list), nil
}

// Feedback records a reaction to movieID.  Negative feedback drops the
// movie from the user's list.
func (s *RecommendationService) Feedback(ctx context.Context, userID, movieID uint64, positive bool) ([]model.Recommendation, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(list, func(r model.Recommendation) bool { return r.MovieID == movieID })
	if i < 0 {
		return nil, ErrNotRecommended
	}
	if positive {
		return list, nil
	}
	list = slices.Delete(list, i, i+1)
	s.mu.Lock()
	s.lists[userID] = slices.Clone(list)
	s.mu.Unlock()
	return list, nil
}

// Refresh rebuilds the full list in shuffled order.
func (s *RecommendationService) Refresh(ctx context.Context, userID uint64) ([]model.Recommendation, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	list, err := s.base(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
	s.lists[userID] = slices.Clone(list)
	return list, nil
}
