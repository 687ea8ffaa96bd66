package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"inkwell/internal/common"
	"inkwell/internal/domain/model"
	"inkwell/internal/domain/policy"
	"inkwell/internal/domain/repository"
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *PostService {
	return &PostService{postRepo: postRepo, commentRepo: commentRepo}
}

type CreatePostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

type UpdatePostRequest struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

func (s *PostService) Create(ctx context.Context, identity *model.User, req CreatePostRequest) (*model.Post, error) {
	if identity == nil {
		return nil, common.ErrUnauthorized
	}
	if !policy.CanCreatePost(identity) {
		return nil, common.Errorf("only authors can create posts: %w", common.ErrForbidden)
	}
	if req.Title == "" || req.Content == "" {
		return nil, common.Errorf("title and content are required: %w", common.ErrBadRequest)
	}

	post := &model.Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Slug:      slug.Make(req.Title),
		Content:   req.Content,
		Published: req.Published,
		AuthorID:  identity.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	summary := identity.Summary()
	post.Author = &summary
	return post, nil
}

// Get returns a post with its comments. Unpublished posts read as not-found
// unless the caller holds the AUTHOR role, so outsiders cannot distinguish
// a draft from an absent post.
func (s *PostService) Get(ctx context.Context, identity *model.User, id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewPost(identity, post) {
		return nil, common.ErrNotFound
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	post.Comments = comments
	return post, nil
}

func (s *PostService) List(ctx context.Context, identity *model.User) ([]model.Post, error) {
	includeUnpublished := identity != nil && identity.Role == model.RoleAuthor
	posts, err := s.postRepo.List(ctx, includeUnpublished)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Update re-fetches the post immediately before acting: existence first
// (404), then ownership (403).
func (s *PostService) Update(ctx context.Context, identity *model.User, id string, req UpdatePostRequest) (*model.Post, error) {
	if identity == nil {
		return nil, common.ErrUnauthorized
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyPost(identity, post) {
		return nil, common.Errorf("you can only update your own posts: %w", common.ErrForbidden)
	}

	if req.Title != nil {
		post.Title = *req.Title
		post.Slug = slug.Make(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, identity *model.User, id string) error {
	if identity == nil {
		return common.ErrUnauthorized
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanModifyPost(identity, post) {
		return common.Errorf("you can only delete your own posts: %w", common.ErrForbidden)
	}
	// A concurrent delete between the check and this call surfaces as
	// not-found, which is the right answer anyway.
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	return nil
}
