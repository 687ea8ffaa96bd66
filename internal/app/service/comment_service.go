package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/common"
	"inkwell/internal/domain/model"
	"inkwell/internal/domain/policy"
	"inkwell/internal/domain/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

// Create attaches a comment to an existing post. Any authenticated user may
// comment; the target post just has to exist.
func (s *CommentService) Create(ctx context.Context, identity *model.User, postID string, req CreateCommentRequest) (*model.Comment, error) {
	if identity == nil {
		return nil, common.ErrUnauthorized
	}
	if req.Content == "" {
		return nil, common.Errorf("comment content is required: %w", common.ErrBadRequest)
	}
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		return nil, err // common.ErrNotFound when the post is gone
	}

	comment := &model.Comment{
		ID:       uuid.NewString(),
		Content:  req.Content,
		PostID:   postID,
		AuthorID: identity.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	summary := identity.Summary()
	comment.Author = &summary
	return comment, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Delete re-fetches the comment before acting: existence (404) before
// authority (403). Deletion authority is the comment's author or any AUTHOR.
func (s *CommentService) Delete(ctx context.Context, identity *model.User, id string) error {
	if identity == nil {
		return common.ErrUnauthorized
	}
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanDeleteComment(identity, comment) {
		return common.Errorf("you can only delete your own comments: %w", common.ErrForbidden)
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return err
	}
	return nil
}
