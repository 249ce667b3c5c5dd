package domain

import "time"

// User represents an identity that has signed in through the external provider at least once.
type User struct {
	ID          string
	DisplayName string
	Provider    string
	Subject     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Identity is what the external provider vouches for after a successful sign-in.
type Identity struct {
	Provider string
	Subject  string
	Name     string
	Email    string
}
