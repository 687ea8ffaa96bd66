package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/common/security"
	"inkwell/internal/domain/model"
	"inkwell/internal/domain/repository/memory"
)

func seedUser(t *testing.T, store *memory.Store, username, email, role string) *model.User {
	t.Helper()
	hash, err := security.HashPassword("password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: hash,
		Role:           role,
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedPost(t *testing.T, store *memory.Store, author *model.User, title string, published bool) *model.Post {
	t.Helper()
	post := &model.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   "content",
		Published: published,
		AuthorID:  author.ID,
	}
	if err := store.Posts().Create(context.Background(), post); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}
