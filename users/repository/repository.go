// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"

	"github.com/qolzam/telar/apps/social/users/models"
)

// UsersCollection is the document collection holding users.
const UsersCollection = "users"

// UserRepository defines the user-specific operations over the document store.
// Lookups that match nothing return interfaces.ErrNoDocuments.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail matches the email exactly
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByEmailFold matches the email ignoring case
	FindByEmailFold(ctx context.Context, email string) (*models.User, error)

	// FindByIDs returns the users that exist among ids, in no particular order
	FindByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	FindAll(ctx context.Context) ([]*models.User, error)

	// Update replaces the stored document with user
	Update(ctx context.Context, user *models.User) error

	// WithTransaction runs fn as one unit of work
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}
