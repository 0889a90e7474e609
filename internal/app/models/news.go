package models

import "time"

// News is an announcement the agency publishes to tourists
type News struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Content     string     `json:"content" db:"content"`
	Category    string     `json:"category" db:"category"`
	AuthorID    *int64     `json:"authorId,omitempty" db:"author_id"`
	Published   bool       `json:"published" db:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// NewsFilter narrows news listings. Published nil lists drafts too.
type NewsFilter struct {
	Category  string
	Published *bool
	Offset    uint64
	Limit     int
}
