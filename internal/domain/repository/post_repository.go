package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inkwell/internal/common"
	"inkwell/internal/domain/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	// List returns posts newest first; unpublished posts are included only
	// when includeUnpublished is set.
	List(ctx context.Context, includeUnpublished bool) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

type pgPostRepository struct {
	db *sql.DB
}

func NewPgPostRepository(db *sql.DB) PostRepository {
	return &pgPostRepository{db: db}
}

func (r *pgPostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `INSERT INTO posts (id, title, slug, content, published, author_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.Title, post.Slug, post.Content, post.Published, post.AuthorID,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	query := `SELECT p.id, p.title, p.slug, p.content, p.published, p.author_id,
	                 p.created_at, p.updated_at, u.username, u.email
	          FROM posts p JOIN users u ON u.id = p.author_id
	          WHERE p.id = $1`
	post := &model.Post{}
	author := model.AuthorSummary{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Slug, &post.Content, &post.Published, &post.AuthorID,
		&post.CreatedAt, &post.UpdatedAt, &author.Username, &author.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPostRepository.FindByID: %w", err)
	}
	post.Author = &author
	return post, nil
}

func (r *pgPostRepository) List(ctx context.Context, includeUnpublished bool) ([]model.Post, error) {
	query := `SELECT p.id, p.title, p.slug, p.content, p.published, p.author_id,
	                 p.created_at, p.updated_at, u.username, u.email
	          FROM posts p JOIN users u ON u.id = p.author_id
	          WHERE p.published = TRUE OR $1
	          ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, includeUnpublished)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.List: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post := model.Post{}
		author := model.AuthorSummary{}
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Slug, &post.Content, &post.Published, &post.AuthorID,
			&post.CreatedAt, &post.UpdatedAt, &author.Username, &author.Email,
		); err != nil {
			return nil, fmt.Errorf("pgPostRepository.List scan: %w", err)
		}
		post.Author = &author
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPostRepository.List rows: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepository) Update(ctx context.Context, post *model.Post) error {
	query := `UPDATE posts
	          SET title = $2, slug = $3, content = $4, published = $5, updated_at = NOW()
	          WHERE id = $1
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.Title, post.Slug, post.Content, post.Published,
	).Scan(&post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgPostRepository.Update: %w", err)
	}
	return nil
}

func (r *pgPostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgPostRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
