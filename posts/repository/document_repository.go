// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"fmt"

	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/posts/models"
)

var newestFirst = &dbi.FindOptions{
	SortField: "createdAt",
	Direction: dbi.SortDescending,
	SortCast:  dbi.CastTimestamp,
}

type documentRepository struct {
	db dbi.Repository
}

// NewDocumentRepository creates a PostRepository backed by the shared document store
func NewDocumentRepository(db dbi.Repository) PostRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, post *models.Post) error {
	result := <-r.db.Save(ctx, PostsCollection, post.ID, post)
	if result.Error != nil {
		return fmt.Errorf("failed to create post: %w", result.Error)
	}
	return nil
}

func (r *documentRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	result := <-r.db.FindOne(ctx, PostsCollection, dbi.ByID(id))
	if err := result.Error(); err != nil {
		return nil, err
	}

	var post models.Post
	if err := result.Decode(&post); err != nil {
		return nil, fmt.Errorf("failed to decode post: %w", err)
	}
	return post.Normalize(), nil
}

func (r *documentRepository) FindByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	return r.find(ctx, dbi.ByIDs(ids), nil)
}

func (r *documentRepository) FindAll(ctx context.Context) ([]*models.Post, error) {
	return r.find(ctx, &dbi.Query{}, newestFirst)
}

func (r *documentRepository) FindByOwner(ctx context.Context, ownerID string) ([]*models.Post, error) {
	return r.find(ctx, dbi.Where("User", ownerID), newestFirst)
}

func (r *documentRepository) Update(ctx context.Context, post *models.Post) error {
	result := <-r.db.Replace(ctx, PostsCollection, post.ID, post)
	if result.Error != nil {
		return fmt.Errorf("failed to update post %s: %w", post.ID, result.Error)
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	result := <-r.db.Delete(ctx, PostsCollection, dbi.ByID(id))
	if result.Error != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, result.Error)
	}
	if deleted, ok := result.Result.(int64); ok && deleted == 0 {
		return dbi.ErrNoDocuments
	}
	return nil
}

func (r *documentRepository) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return r.db.WithTransaction(ctx, fn)
}

func (r *documentRepository) find(ctx context.Context, query *dbi.Query, opts *dbi.FindOptions) ([]*models.Post, error) {
	cursor := <-r.db.Find(ctx, PostsCollection, query, opts)
	defer cursor.Close()

	posts := make([]*models.Post, 0)
	for cursor.Next() {
		var post models.Post
		if err := cursor.Decode(&post); err != nil {
			return nil, fmt.Errorf("failed to decode post: %w", err)
		}
		posts = append(posts, post.Normalize())
	}
	if err := cursor.Error(); err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	return posts, nil
}
