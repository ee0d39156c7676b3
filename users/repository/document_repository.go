// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"fmt"

	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/users/models"
)

type documentRepository struct {
	db dbi.Repository
}

// NewDocumentRepository creates a UserRepository backed by the shared document store
func NewDocumentRepository(db dbi.Repository) UserRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, user *models.User) error {
	result := <-r.db.Save(ctx, UsersCollection, user.ID, user)
	if result.Error != nil {
		return fmt.Errorf("failed to create user: %w", result.Error)
	}
	return nil
}

func (r *documentRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, dbi.ByID(id))
}

func (r *documentRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, dbi.Where("email", email))
}

func (r *documentRepository) FindByEmailFold(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, dbi.WhereFold("email", email))
}

func (r *documentRepository) FindByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	return r.find(ctx, dbi.ByIDs(ids), nil)
}

func (r *documentRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	return r.find(ctx, &dbi.Query{}, &dbi.FindOptions{
		SortField: "createdAt",
		Direction: dbi.SortAscending,
		SortCast:  dbi.CastTimestamp,
	})
}

func (r *documentRepository) Update(ctx context.Context, user *models.User) error {
	result := <-r.db.Replace(ctx, UsersCollection, user.ID, user)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, result.Error)
	}
	return nil
}

func (r *documentRepository) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return r.db.WithTransaction(ctx, fn)
}

func (r *documentRepository) findOne(ctx context.Context, query *dbi.Query) (*models.User, error) {
	result := <-r.db.FindOne(ctx, UsersCollection, query)
	if err := result.Error(); err != nil {
		return nil, err
	}

	var user models.User
	if err := result.Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return user.Normalize(), nil
}

func (r *documentRepository) find(ctx context.Context, query *dbi.Query, opts *dbi.FindOptions) ([]*models.User, error) {
	cursor := <-r.db.Find(ctx, UsersCollection, query, opts)
	defer cursor.Close()

	users := make([]*models.User, 0)
	for cursor.Next() {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, user.Normalize())
	}
	if err := cursor.Error(); err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return users, nil
}
