package domain

import "time"

// Watchlist is a named, user-owned list of movie ids from the metadata
// provider.
type Watchlist struct {
	ID        string
	UserID    string
	Name      string
	Movies    []int
	CreatedAt time.Time
	UpdatedAt time.Time
}
