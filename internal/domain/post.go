package domain

import "time"

// Post is a feed entry written by exactly one author.
type Post struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	CreatedAt time.Time

	// Author is populated on reads only.
	Author Author
}

// Author is the public projection of a post's User.
type Author struct {
	ID          string
	DisplayName string
}
