package models

import "time"

// UserStats counts analyses per detected category for one user.
// An analysis with several flags set is counted once per flag.
type UserStats struct {
	UserID                 int64     `json:"user_id"`
	Total                  int       `json:"total"`
	Organic                int       `json:"organic"`
	InorganicRecyclable    int       `json:"inorganic_recyclable"`
	InorganicNonRecyclable int       `json:"inorganic_non_recyclable"`
	Unrecognized           int       `json:"unrecognized"`
	LastUsedAt             time.Time `json:"last_used_at,omitempty"`
}

// Add folds one analysis into the counters
func (s *UserStats) Add(a *Analysis) {
	s.Total++
	if a.Categories.Organic {
		s.Organic++
	}
	if a.Categories.InorganicRecyclable {
		s.InorganicRecyclable++
	}
	if a.Categories.InorganicNonRecyclable {
		s.InorganicNonRecyclable++
	}
	if !a.Categories.Any() {
		s.Unrecognized++
	}
	if a.CreatedAt.After(s.LastUsedAt) {
		s.LastUsedAt = a.CreatedAt
	}
}
