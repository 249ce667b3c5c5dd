package feed

import (
	"time"

	"auth-blog/internal/domain"
)

const unknownAuthor = "Unknown"

// Entry is the public shape of a post in the feed.
type Entry struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Author    EntryAuthor `json:"author"`
	CreatedAt time.Time   `json:"createdAt"`
}

type EntryAuthor struct {
	Name string `json:"name"`
}

func NewEntry(p domain.Post) Entry {
	name := p.Author.DisplayName
	if name == "" {
		name = unknownAuthor
	}
	return Entry{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Author:    EntryAuthor{Name: name},
		CreatedAt: p.CreatedAt,
	}
}

func Entries(posts []domain.Post) []Entry {
	out := make([]Entry, len(posts))
	for i := range posts {
		out[i] = NewEntry(posts[i])
	}
	return out
}
