// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"

	"github.com/qolzam/telar/apps/social/posts/models"
	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock implementation of PostRepository for testing
type MockPostRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

// FindByID mocks the FindByID method
func (m *MockPostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

// FindByIDs mocks the FindByIDs method
func (m *MockPostRepository) FindByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

// FindAll mocks the FindAll method
func (m *MockPostRepository) FindAll(ctx context.Context) ([]*models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

// FindByOwner mocks the FindByOwner method
func (m *MockPostRepository) FindByOwner(ctx context.Context, ownerID string) ([]*models.Post, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

// Update mocks the Update method
func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// WithTransaction mocks the WithTransaction method
func (m *MockPostRepository) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Get(0).(error)
	}
	if fn != nil {
		return fn(ctx)
	}
	return args.Error(0)
}
