// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/gofrs/uuid"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	postmodels "github.com/qolzam/telar/apps/social/posts/models"
	postsRepository "github.com/qolzam/telar/apps/social/posts/repository"
	sharedInterfaces "github.com/qolzam/telar/apps/social/shared/interfaces"
	usersErrors "github.com/qolzam/telar/apps/social/users/errors"
	"github.com/qolzam/telar/apps/social/users/models"
	"github.com/qolzam/telar/apps/social/users/repository"
	"github.com/qolzam/telar/apps/social/users/validation"
)

// userService implements the UserService interface
type userService struct {
	repo        repository.UserRepository
	postRepo    postsRepository.PostRepository
	notifier    sharedInterfaces.Notifier
	invalidator sharedInterfaces.PostViewInvalidator
}

// NewUserService creates a new instance of the user service. Both repositories must
// share one document store so their writes can join a single transaction.
// notifier and invalidator are optional.
func NewUserService(repo repository.UserRepository, postRepo postsRepository.PostRepository, notifier sharedInterfaces.Notifier, invalidator sharedInterfaces.PostViewInvalidator) UserService {
	return &userService{
		repo:        repo,
		postRepo:    postRepo,
		notifier:    notifier,
		invalidator: invalidator,
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		log.ErrorWithContext(ctx, "Repository.FindAll failed: %v", err)
		return nil, usersErrors.WrapDatabaseError("list users", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(ctx, "get user", err)
	}
	return user, nil
}

// GetUserByEmail matches the email exactly and resolves the posts reference
// sequence in stored order. Ids whose post no longer exists are skipped.
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.lookupError(ctx, "get user by email", err)
	}

	posts, err := s.postRepo.FindByIDs(ctx, user.Posts)
	if err != nil {
		log.ErrorWithContext(ctx, "Post population failed for user %s: %v", user.ID, err)
		return nil, usersErrors.WrapDatabaseError("populate posts", err)
	}

	byID := make(map[string]*postmodels.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}

	profile := &models.UserProfile{User: *user, Posts: make([]postmodels.Post, 0, len(user.Posts))}
	for _, id := range user.Posts {
		if post, ok := byID[id]; ok {
			profile.Posts = append(profile.Posts, *post)
		}
	}
	return profile, nil
}

// CreateUser inserts a user with empty relationship lists and zeroed counters.
// A second user with the same email is rejected.
func (s *userService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := validation.ValidateCreateUserRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := (&models.User{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}).Normalize()

	err := s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		_, err := s.repo.FindByEmail(txCtx, req.Email)
		switch {
		case err == nil:
			return usersErrors.ErrEmailTaken
		case !errors.Is(err, dbi.ErrNoDocuments):
			return usersErrors.WrapDatabaseError("check email", err)
		}

		if err := s.repo.Create(txCtx, user); err != nil {
			if errors.Is(err, dbi.ErrDuplicateKey) {
				return usersErrors.ErrEmailTaken
			}
			return usersErrors.WrapDatabaseError("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.InfoWithContext(ctx, "User %s created", user.ID)
	return user, nil
}

// UpdateUser applies the provided fields to the user matched by email.
// Empty strings never clear a field.
func (s *userService) UpdateUser(ctx context.Context, req *models.UpdateUserRequest) (*models.User, error) {
	if err := validation.ValidateUpdateUserRequest(req); err != nil {
		return nil, err
	}

	var (
		user           *models.User
		profileChanged bool
	)
	err := s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.FindByEmail(txCtx, req.Email)
		if err != nil {
			return s.lookupError(txCtx, "update user", err)
		}

		if req.Name != nil && *req.Name != "" {
			user.Name = *req.Name
			profileChanged = true
		}
		if req.Bio != nil && *req.Bio != "" {
			user.Bio = *req.Bio
			profileChanged = true
		}
		if req.ProfilePicture != nil && *req.ProfilePicture != "" {
			user.ProfilePicture = *req.ProfilePicture
			profileChanged = true
		}
		if req.TotalPosts != nil {
			user.TotalPosts = *req.TotalPosts
		}
		user.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(txCtx, user); err != nil {
			return usersErrors.WrapDatabaseError("update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if profileChanged && s.invalidator != nil {
		s.invalidator.InvalidatePostViews(ctx)
	}
	return user, nil
}

// FollowUser records the edge on both documents in one unit of work.
func (s *userService) FollowUser(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error) {
	if err := validation.ValidateFollowRequest(req); err != nil {
		return nil, err
	}

	var follower, followee *models.User
	err := s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if follower, followee, err = s.loadPair(txCtx, req); err != nil {
			return err
		}
		if follower.IsFollowing(followee.Email) {
			return usersErrors.ErrAlreadyFollowing
		}

		now := time.Now().UTC()
		follower.Following = append(follower.Following, followee.Email)
		follower.UpdatedAt = now
		if !contains(followee.Followers, follower.Email) {
			followee.Followers = append(followee.Followers, follower.Email)
		}
		followee.UpdatedAt = now

		return s.savePair(txCtx, follower, followee)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, sharedInterfaces.NotificationInput{
		UserID: followee.ID,
		Text:   fmt.Sprintf("%s started following you.", follower.DisplayName(follower.Email)),
		Link:   "/users/" + follower.ID,
		Image:  follower.ProfilePicture,
	})

	return &models.UserActionResponse{
		Message: fmt.Sprintf("You are now following %s.", followee.DisplayName("the user")),
		User:    follower,
	}, nil
}

// UnfollowUser removes the edge from both documents in one unit of work.
func (s *userService) UnfollowUser(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error) {
	if err := validation.ValidateFollowRequest(req); err != nil {
		return nil, err
	}

	var follower, followee *models.User
	err := s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if follower, followee, err = s.loadPair(txCtx, req); err != nil {
			return err
		}
		if !follower.IsFollowing(followee.Email) {
			return usersErrors.ErrNotFollowing
		}

		now := time.Now().UTC()
		follower.Following = models.Remove(follower.Following, followee.Email)
		follower.UpdatedAt = now
		followee.Followers = models.Remove(followee.Followers, follower.Email)
		followee.UpdatedAt = now

		return s.savePair(txCtx, follower, followee)
	})
	if err != nil {
		return nil, err
	}

	return &models.UserActionResponse{
		Message: fmt.Sprintf("You have unfollowed %s.", followee.DisplayName("the user")),
		User:    follower,
	}, nil
}

func (s *userService) loadPair(ctx context.Context, req *models.FollowRequest) (*models.User, *models.User, error) {
	follower, err := s.repo.FindByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, nil, s.lookupError(ctx, "load follower", err)
	}
	followee, err := s.repo.FindByEmail(ctx, req.FollowEmail)
	if err != nil {
		return nil, nil, s.lookupError(ctx, "load followee", err)
	}
	return follower, followee, nil
}

func (s *userService) savePair(ctx context.Context, follower, followee *models.User) error {
	if err := s.repo.Update(ctx, follower); err != nil {
		return usersErrors.WrapDatabaseError("update follower", err)
	}
	if err := s.repo.Update(ctx, followee); err != nil {
		return usersErrors.WrapDatabaseError("update followee", err)
	}
	return nil
}

func (s *userService) notify(ctx context.Context, input sharedInterfaces.NotificationInput) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, input); err != nil {
		log.WarnWithContext(ctx, "Notification for user %s failed: %v", input.UserID, err)
	}
}

func (s *userService) lookupError(ctx context.Context, op string, err error) error {
	if errors.Is(err, dbi.ErrNoDocuments) {
		return usersErrors.ErrUserNotFound
	}
	log.ErrorWithContext(ctx, "%s failed: %v", op, err)
	return usersErrors.WrapDatabaseError(op, err)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
