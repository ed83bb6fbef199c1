package model

// Promotion is a marketing offer.  Exclusive promotions are only claimable
// by signed-in users, which in practice applies to every claim.
type Promotion struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ValidUntil  string `json:"valid_until"`
	Code        string `json:"-"`
	Exclusive   bool   `json:"exclusive"`
}

// Recommendation suggests a catalog movie to a signed-in user.
type Recommendation struct {
	MovieID         uint64 `json:"movie_id"`
	Title           string `json:"title"`
	Image           string `json:"image,omitempty"`
	MatchPercentage int    `json:"match_percentage"`
	Reason          string `json:"reason"`
}
