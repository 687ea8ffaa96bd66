package model

import (
	"time"
)

// Post is owned by exactly one user. Unpublished posts are only observable
// by callers with the AUTHOR role.
type Post struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Slug      string         `json:"slug"`
	Content   string         `json:"content"`
	Published bool           `json:"published"`
	AuthorID  string         `json:"author_id"`
	Author    *AuthorSummary `json:"author,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Comments are populated on the detail view only.
	Comments []Comment `json:"comments,omitempty"`
}
