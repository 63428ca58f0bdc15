package domain

import "time"

// Rating holds a user's rating and/or review for one movie. Either field
// may be absent, but never both. One record per (user, movie).
type Rating struct {
	ID        string
	UserID    string
	MovieID   int
	Rating    *int    // 1..10
	Review    *string // up to 1000 chars
	CreatedAt time.Time
	UpdatedAt time.Time
}
