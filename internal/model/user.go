// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account. Email and Username are each globally unique.
//
// GitHubID is set only for accounts created through GitHub sign-in; it is
// nil for accounts registered with email and password.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"-"` // relative media URL, empty when unset
	GitHubID     *int64    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Profile is the public view of a user as seen by a particular viewer.
// IsSubscribed is true when the viewer follows this user; it is always false
// for anonymous viewers.
type Profile struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// AuthorDetail is a Profile together with the author's recipes, as returned
// by follow and subscription listings. Recipes may be truncated by the
// caller's recipes_limit; RecipesCount is always the full total.
type AuthorDetail struct {
	Profile
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int             `json:"recipes_count"`
}
