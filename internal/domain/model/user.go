package model

import (
	"time"
)

const (
	RoleReader = "READER"
	RoleAuthor = "AUTHOR"
)

// ValidRole reports whether a registration-supplied role is one we accept.
func ValidRole(role string) bool {
	return role == RoleReader || role == RoleAuthor
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AuthorSummary is the public slice of a user embedded in post and comment
// responses.
type AuthorSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Summary() AuthorSummary {
	return AuthorSummary{Username: u.Username, Email: u.Email}
}
