package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inkwell/internal/common"
	"inkwell/internal/domain/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	// ListByPost returns a post's comments in ascending creation order.
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
	Delete(ctx context.Context, id string) error
}

type pgCommentRepository struct {
	db *sql.DB
}

func NewPgCommentRepository(db *sql.DB) CommentRepository {
	return &pgCommentRepository{db: db}
}

func (r *pgCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	query := `INSERT INTO comments (id, content, post_id, author_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		comment.ID, comment.Content, comment.PostID, comment.AuthorID,
	).Scan(&comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgCommentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCommentRepository) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	query := `SELECT c.id, c.content, c.post_id, c.author_id, c.created_at, u.username, u.email
	          FROM comments c JOIN users u ON u.id = c.author_id
	          WHERE c.id = $1`
	comment := &model.Comment{}
	author := model.AuthorSummary{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.Content, &comment.PostID, &comment.AuthorID, &comment.CreatedAt,
		&author.Username, &author.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCommentRepository.FindByID: %w", err)
	}
	comment.Author = &author
	return comment, nil
}

func (r *pgCommentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	query := `SELECT c.id, c.content, c.post_id, c.author_id, c.created_at, u.username, u.email
	          FROM comments c JOIN users u ON u.id = c.author_id
	          WHERE c.post_id = $1
	          ORDER BY c.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("pgCommentRepository.ListByPost: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		comment := model.Comment{}
		author := model.AuthorSummary{}
		if err := rows.Scan(
			&comment.ID, &comment.Content, &comment.PostID, &comment.AuthorID, &comment.CreatedAt,
			&author.Username, &author.Email,
		); err != nil {
			return nil, fmt.Errorf("pgCommentRepository.ListByPost scan: %w", err)
		}
		comment.Author = &author
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCommentRepository.ListByPost rows: %w", err)
	}
	return comments, nil
}

func (r *pgCommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCommentRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgCommentRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
