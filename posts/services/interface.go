package services

import (
	"context"

	"github.com/qolzam/telar/apps/social/posts/models"
)

// PostService defines the interface for post operations
type PostService interface {
	// Read operations
	ListPosts(ctx context.Context) ([]models.PostResponse, error)
	ListUserPosts(ctx context.Context, userID string) ([]models.PostResponse, error)
	GetPost(ctx context.Context, postID string) (*models.PostResponse, error)

	// Write operations
	CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, postID string, req *models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, postID string) error

	// Likes and comments
	LikePost(ctx context.Context, postID string, req *models.LikeRequest) (*models.Post, error)
	UnlikePost(ctx context.Context, postID string, req *models.LikeRequest) (*models.Post, error)
	AddComment(ctx context.Context, postID string, req *models.CommentRequest) (*models.Post, error)
	DeleteComment(ctx context.Context, postID string, commentID string) (*models.Post, error)

	// InvalidatePostViews drops cached populated views
	InvalidatePostViews(ctx context.Context)
}
