package services

import (
	"context"

	"github.com/qolzam/telar/apps/social/users/models"
)

// UserService defines the interface for user operations
type UserService interface {
	// Read operations
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error)

	// Write operations
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, req *models.UpdateUserRequest) (*models.User, error)

	// Relationship operations
	FollowUser(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error)
	UnfollowUser(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error)
}
