// Package memory provides in-memory repository implementations. They back
// the service and HTTP tests; the Postgres implementations are the ones
// wired in production.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"inkwell/internal/common"
	"inkwell/internal/domain/model"
	"inkwell/internal/domain/repository"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]model.User
	posts    map[string]model.Post
	comments map[string]model.Comment
	seq      int64
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]model.User),
		posts:    make(map[string]model.Post),
		comments: make(map[string]model.Comment),
	}
}

// now hands out strictly increasing timestamps so ordering assertions do not
// depend on clock resolution.
func (s *Store) now() time.Time {
	s.seq++
	return time.Unix(0, s.seq*int64(time.Millisecond)).UTC()
}

func (s *Store) Users() repository.UserRepository       { return &userStore{s} }
func (s *Store) Posts() repository.PostRepository       { return &postStore{s} }
func (s *Store) Comments() repository.CommentRepository { return &commentStore{s} }

// UpdateUserRole mutates a stored user's role, simulating a server-side role
// change after token issuance.
func (s *Store) UpdateUserRole(id, role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false
	}
	u.Role = role
	u.UpdatedAt = s.now()
	s.users[id] = u
	return true
}

// DeleteUser removes a user record, simulating deletion after token issuance.
func (s *Store) DeleteUser(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

type userStore struct{ s *Store }

func (r *userStore) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
	}
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *userStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *userStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := u
	return &copied, nil
}

type postStore struct{ s *Store }

func (r *postStore) Create(ctx context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	post.CreatedAt = now
	post.UpdatedAt = now
	stored := *post
	stored.Author = nil
	stored.Comments = nil
	r.s.posts[post.ID] = stored
	return nil
}

func (r *postStore) FindByID(ctx context.Context, id string) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := p
	r.attachAuthor(&copied)
	return &copied, nil
}

func (r *postStore) List(ctx context.Context, includeUnpublished bool) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	posts := []model.Post{}
	for _, p := range r.s.posts {
		if !p.Published && !includeUnpublished {
			continue
		}
		copied := p
		r.attachAuthor(&copied)
		posts = append(posts, copied)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *postStore) Update(ctx context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.posts[post.ID]
	if !ok {
		return common.ErrNotFound
	}
	existing.Title = post.Title
	existing.Slug = post.Slug
	existing.Content = post.Content
	existing.Published = post.Published
	existing.UpdatedAt = r.s.now()
	r.s.posts[post.ID] = existing
	post.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *postStore) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.posts, id)
	// comments cascade with their post
	for cid, c := range r.s.comments {
		if c.PostID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

func (r *postStore) attachAuthor(post *model.Post) {
	if u, ok := r.s.users[post.AuthorID]; ok {
		summary := u.Summary()
		post.Author = &summary
	}
}

type commentStore struct{ s *Store }

func (r *commentStore) Create(ctx context.Context, comment *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.CreatedAt = r.s.now()
	stored := *comment
	stored.Author = nil
	r.s.comments[comment.ID] = stored
	return nil
}

func (r *commentStore) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := c
	r.attachAuthor(&copied)
	return &copied, nil
}

func (r *commentStore) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comments := []model.Comment{}
	for _, c := range r.s.comments {
		if c.PostID != postID {
			continue
		}
		copied := c
		r.attachAuthor(&copied)
		comments = append(comments, copied)
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *commentStore) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *commentStore) attachAuthor(comment *model.Comment) {
	if u, ok := r.s.users[comment.AuthorID]; ok {
		summary := u.Summary()
		comment.Author = &summary
	}
}
