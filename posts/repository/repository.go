// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"

	"github.com/qolzam/telar/apps/social/posts/models"
)

// PostsCollection is the document collection holding posts.
const PostsCollection = "posts"

// PostRepository defines the post-specific operations over the document store.
// Lookups that match nothing return interfaces.ErrNoDocuments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error

	FindByID(ctx context.Context, id string) (*models.Post, error)

	// FindByIDs returns the posts that exist among ids, in no particular order
	FindByIDs(ctx context.Context, ids []string) ([]*models.Post, error)

	// FindAll returns every post, newest first
	FindAll(ctx context.Context) ([]*models.Post, error)

	// FindByOwner returns the posts whose User is ownerID, newest first
	FindByOwner(ctx context.Context, ownerID string) ([]*models.Post, error)

	// Update replaces the stored document with post
	Update(ctx context.Context, post *models.Post) error

	Delete(ctx context.Context, id string) error

	// WithTransaction runs fn as one unit of work
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}
