package validation

import (
	"strings"

	postsErrors "github.com/qolzam/telar/apps/social/posts/errors"
	"github.com/qolzam/telar/apps/social/posts/models"
)

// ValidateCreatePostRequest requires the owner email. Content and caption are free text.
func ValidateCreatePostRequest(req *models.CreatePostRequest) error {
	if req == nil {
		return postsErrors.NewValidationError("Request body is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return postsErrors.NewValidationError("Email is required")
	}
	return nil
}

// ValidateUpdatePostRequest requires a caption
func ValidateUpdatePostRequest(req *models.UpdatePostRequest) error {
	if req == nil || req.Caption == nil {
		return postsErrors.NewValidationError("Caption is required")
	}
	return nil
}

// ValidateLikeRequest validates like and unlike requests
func ValidateLikeRequest(req *models.LikeRequest) error {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return postsErrors.NewValidationError("userId is required")
	}
	return nil
}

// ValidateCommentRequest validates the add comment request. Text is not checked.
func ValidateCommentRequest(req *models.CommentRequest) error {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return postsErrors.NewValidationError("userId is required")
	}
	return nil
}
