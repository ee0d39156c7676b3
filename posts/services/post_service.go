// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/internal/cache"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	postsErrors "github.com/qolzam/telar/apps/social/posts/errors"
	"github.com/qolzam/telar/apps/social/posts/models"
	"github.com/qolzam/telar/apps/social/posts/repository"
	"github.com/qolzam/telar/apps/social/posts/validation"
	sharedInterfaces "github.com/qolzam/telar/apps/social/shared/interfaces"
	usersRepository "github.com/qolzam/telar/apps/social/users/repository"
)

const (
	cacheKeyList     = "posts:list"
	cacheKeyPost     = "posts:post:"
	cacheKeyUser     = "posts:user:"
	cachePatternAll  = "posts:*"
	notificationName = "Someone"
)

// postService implements the PostService interface
type postService struct {
	repo         repository.PostRepository
	userRepo     usersRepository.UserRepository
	cacheService *cache.GenericCacheService
	notifier     sharedInterfaces.Notifier

	// generation advances on every invalidation; a view read under an older
	// generation is never left in the cache.
	generation atomic.Uint64
}

// Ensure postService implements sharedInterfaces.PostViewInvalidator interface
var _ sharedInterfaces.PostViewInvalidator = (*postService)(nil)

// NewPostService creates a new instance of the post service. Both repositories must
// share one document store so paired writes join a single transaction.
// cacheService and notifier are optional.
func NewPostService(repo repository.PostRepository, userRepo usersRepository.UserRepository, cacheService *cache.GenericCacheService, notifier sharedInterfaces.Notifier) PostService {
	return &postService{
		repo:         repo,
		userRepo:     userRepo,
		cacheService: cacheService,
		notifier:     notifier,
	}
}

// ListPosts returns every post, newest first, with user references populated
func (s *postService) ListPosts(ctx context.Context) ([]models.PostResponse, error) {
	var cached []models.PostResponse
	if s.cacheService.GetCached(ctx, cacheKeyList, &cached) == nil {
		return cached, nil
	}

	gen := s.generation.Load()
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		log.ErrorWithContext(ctx, "Repository.FindAll failed: %v", err)
		return nil, postsErrors.WrapDatabaseError("list posts", err)
	}

	responses, err := s.populate(ctx, posts)
	if err != nil {
		return nil, err
	}
	s.store(ctx, gen, cacheKeyList, responses)
	return responses, nil
}

// ListUserPosts derives a user's posts by querying on the owner reference
func (s *postService) ListUserPosts(ctx context.Context, userID string) ([]models.PostResponse, error) {
	key := cacheKeyUser + userID
	var cached []models.PostResponse
	if s.cacheService.GetCached(ctx, key, &cached) == nil {
		return cached, nil
	}

	gen := s.generation.Load()
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, s.userLookupError(ctx, err)
	}

	posts, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		log.ErrorWithContext(ctx, "Repository.FindByOwner failed for user %s: %v", userID, err)
		return nil, postsErrors.WrapDatabaseError("list user posts", err)
	}

	responses, err := s.populate(ctx, posts)
	if err != nil {
		return nil, err
	}
	s.store(ctx, gen, key, responses)
	return responses, nil
}

func (s *postService) GetPost(ctx context.Context, postID string) (*models.PostResponse, error) {
	key := cacheKeyPost + postID
	var cached models.PostResponse
	if s.cacheService.GetCached(ctx, key, &cached) == nil {
		return &cached, nil
	}

	gen := s.generation.Load()
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, s.postLookupError(ctx, err)
	}

	responses, err := s.populate(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	s.store(ctx, gen, key, responses[0])
	return &responses[0], nil
}

// CreatePost inserts the post and records it on the owner, who is matched by
// email ignoring case.
func (s *postService) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	if err := validation.ValidateCreatePostRequest(req); err != nil {
		return nil, err
	}

	var post *models.Post
	err := s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		owner, err := s.userRepo.FindByEmailFold(txCtx, req.Email)
		if err != nil {
			return s.userLookupError(txCtx, err)
		}

		now := time.Now().UTC()
		post = (&models.Post{
			ID:        uuid.Must(uuid.NewV4()).String(),
			User:      owner.ID,
			Content:   req.Content,
			Caption:   req.Caption,
			CreatedAt: now,
			UpdatedAt: now,
		}).Normalize()

		if err := s.repo.Create(txCtx, post); err != nil {
			return postsErrors.WrapDatabaseError("create post", err)
		}

		owner.Posts = append(owner.Posts, post.ID)
		owner.TotalPosts++
		owner.UpdatedAt = now
		if err := s.userRepo.Update(txCtx, owner); err != nil {
			return postsErrors.WrapDatabaseError("update post owner", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidatePostViews(ctx)
	log.InfoWithContext(ctx, "Post %s created for user %s", post.ID, post.User)
	return post, nil
}

// UpdatePost replaces the caption only
func (s *postService) UpdatePost(ctx context.Context, postID string, req *models.UpdatePostRequest) (*models.Post, error) {
	if err := validation.ValidateUpdatePostRequest(req); err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, postID, func(post *models.Post) error {
		post.Caption = *req.Caption
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post from its owner's posts, decrements totalPosts
// without a floor, then deletes the post.
func (s *postService) DeletePost(ctx context.Context, postID string) error {
	err := s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		post, err := s.repo.FindByID(txCtx, postID)
		if err != nil {
			return s.postLookupError(txCtx, err)
		}

		owner, err := s.userRepo.FindByID(txCtx, post.User)
		if err != nil {
			return s.userLookupError(txCtx, err)
		}

		owner.Posts = without(owner.Posts, post.ID)
		owner.TotalPosts--
		owner.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.Update(txCtx, owner); err != nil {
			return postsErrors.WrapDatabaseError("update post owner", err)
		}

		if err := s.repo.Delete(txCtx, post.ID); err != nil {
			if errors.Is(err, dbi.ErrNoDocuments) {
				return postsErrors.ErrPostNotFound
			}
			return postsErrors.WrapDatabaseError("delete post", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.InvalidatePostViews(ctx)
	log.InfoWithContext(ctx, "Post %s deleted", postID)
	return nil
}

// LikePost appends a like for the user unless one already exists
func (s *postService) LikePost(ctx context.Context, postID string, req *models.LikeRequest) (*models.Post, error) {
	if err := validation.ValidateLikeRequest(req); err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, postID, func(post *models.Post) error {
		if post.LikedBy(req.UserID) >= 0 {
			return postsErrors.ErrAlreadyLiked
		}
		post.Likes = append(post.Likes, models.Like{User: req.UserID, CreatedAt: time.Now().UTC()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, post, req.UserID, "liked your post.")
	return post, nil
}

// UnlikePost removes the user's like
func (s *postService) UnlikePost(ctx context.Context, postID string, req *models.LikeRequest) (*models.Post, error) {
	if err := validation.ValidateLikeRequest(req); err != nil {
		return nil, err
	}

	return s.mutate(ctx, postID, func(post *models.Post) error {
		i := post.LikedBy(req.UserID)
		if i < 0 {
			return postsErrors.ErrNotLiked
		}
		post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
		return nil
	})
}

// AddComment appends a comment. Empty text is accepted.
func (s *postService) AddComment(ctx context.Context, postID string, req *models.CommentRequest) (*models.Post, error) {
	if err := validation.ValidateCommentRequest(req); err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, postID, func(post *models.Post) error {
		post.Comments = append(post.Comments, models.Comment{
			ID:        uuid.Must(uuid.NewV4()).String(),
			User:      req.UserID,
			Text:      req.Text,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, post, req.UserID, "commented on your post.")
	return post, nil
}

func (s *postService) DeleteComment(ctx context.Context, postID string, commentID string) (*models.Post, error) {
	return s.mutate(ctx, postID, func(post *models.Post) error {
		i := post.CommentIndex(commentID)
		if i < 0 {
			return postsErrors.ErrCommentNotFound
		}
		post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
		return nil
	})
}

// InvalidatePostViews drops every cached post view
func (s *postService) InvalidatePostViews(ctx context.Context) {
	if !s.cacheService.IsEnabled() {
		return
	}
	s.generation.Add(1)
	log.InfoWithContext(ctx, "Invalidating cached post views")
	_ = s.cacheService.InvalidatePattern(ctx, cachePatternAll)
}

// mutate loads a post, applies change and persists it as one unit of work.
func (s *postService) mutate(ctx context.Context, postID string, change func(*models.Post) error) (*models.Post, error) {
	var post *models.Post
	err := s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		post, err = s.repo.FindByID(txCtx, postID)
		if err != nil {
			return s.postLookupError(txCtx, err)
		}

		if err := change(post); err != nil {
			return err
		}
		post.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(txCtx, post); err != nil {
			if errors.Is(err, dbi.ErrNoDocuments) {
				return postsErrors.ErrPostNotFound
			}
			return postsErrors.WrapDatabaseError("update post", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidatePostViews(ctx)
	return post, nil
}

// populate resolves owner, like and comment user references with one batch lookup.
func (s *postService) populate(ctx context.Context, posts []*models.Post) ([]models.PostResponse, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, post := range posts {
		for _, id := range post.UserIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	authors := make(map[string]*models.Author, len(ids))
	if len(ids) > 0 {
		users, err := s.userRepo.FindByIDs(ctx, ids)
		if err != nil {
			log.ErrorWithContext(ctx, "User population failed: %v", err)
			return nil, postsErrors.WrapDatabaseError("populate users", err)
		}
		for _, user := range users {
			authors[user.ID] = user.Author()
		}
	}

	responses := make([]models.PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, models.Populate(post, authors))
	}
	return responses, nil
}

// store caches a view read under generation gen. The entry is skipped, or removed
// again, when an invalidation ran after the read began.
func (s *postService) store(ctx context.Context, gen uint64, key string, value interface{}) {
	if !s.cacheService.IsEnabled() || s.generation.Load() != gen {
		return
	}
	if err := s.cacheService.CacheData(ctx, key, value); err != nil {
		log.WarnWithContext(ctx, "Caching %s failed: %v", key, err)
		return
	}
	if s.generation.Load() != gen {
		_ = s.cacheService.InvalidateKey(ctx, key)
	}
}

// notifyOwner tells the post owner about an action by actorID on their post.
func (s *postService) notifyOwner(ctx context.Context, post *models.Post, actorID, action string) {
	if s.notifier == nil || post.User == actorID {
		return
	}

	name, image := notificationName, ""
	if actor, err := s.userRepo.FindByID(ctx, actorID); err == nil {
		name, image = actor.DisplayName(actor.Email), actor.ProfilePicture
	}

	err := s.notifier.Notify(ctx, sharedInterfaces.NotificationInput{
		UserID:   post.User,
		Text:     fmt.Sprintf("%s %s", name, action),
		Link:     "/users/" + actorID,
		PostLink: "/posts/" + post.ID,
		Image:    image,
	})
	if err != nil {
		log.WarnWithContext(ctx, "Notification for user %s failed: %v", post.User, err)
	}
}

func (s *postService) postLookupError(ctx context.Context, err error) error {
	if errors.Is(err, dbi.ErrNoDocuments) {
		return postsErrors.ErrPostNotFound
	}
	log.ErrorWithContext(ctx, "Post lookup failed: %v", err)
	return postsErrors.WrapDatabaseError("find post", err)
}

func (s *postService) userLookupError(ctx context.Context, err error) error {
	if errors.Is(err, dbi.ErrNoDocuments) {
		return postsErrors.ErrOwnerNotFound
	}
	log.ErrorWithContext(ctx, "User lookup failed: %v", err)
	return postsErrors.WrapDatabaseError("find user", err)
}

// without filters every occurrence of id out of ids
func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
