package domain

import "time"

// User is the identity record. PasswordHash is only populated on the
// credentials-lookup path; default reads leave it empty.
type User struct {
	ID           string
	Username     string
	Email        string // stored lowercase, unique
	PasswordHash string // argon2 encoded
	FirstName    string
	LastName     string
	Avatar       string

	Preferences Preferences
	Favorites   []int // movie ids

	IsActive        bool
	IsEmailVerified bool
	LastLogin       *time.Time

	PasswordResetToken   string
	PasswordResetExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Preferences drive the recommendation proxy: stored provider ids plus a
// minimum vote average and preferred original languages.
type Preferences struct {
	FavoriteGenres    []int
	FavoriteActors    []int
	FavoriteDirectors []int
	MinRating         float64 // 0..10
	Languages         []string
}

// FullName mirrors the display identity used in token claims: first+last
// name when both are set, otherwise whichever exists, otherwise the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// ProfileUpdate carries the mutable profile fields; nil means "leave as is".
type ProfileUpdate struct {
	Username  *string
	FirstName *string
	LastName  *string
	Avatar    *string
}
