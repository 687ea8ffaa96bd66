package model

import (
	"time"
)

type Comment struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	PostID    string         `json:"post_id"`
	AuthorID  string         `json:"author_id"`
	Author    *AuthorSummary `json:"author,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
