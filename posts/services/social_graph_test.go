package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/qolzam/telar/apps/social/internal/cache"
	"github.com/qolzam/telar/apps/social/internal/database/memory"
	notificationRepository "github.com/qolzam/telar/apps/social/notifications/repository"
	notificationServices "github.com/qolzam/telar/apps/social/notifications/services"
	postsErrors "github.com/qolzam/telar/apps/social/posts/errors"
	"github.com/qolzam/telar/apps/social/posts/models"
	"github.com/qolzam/telar/apps/social/posts/repository"
	usersErrors "github.com/qolzam/telar/apps/social/users/errors"
	usermodels "github.com/qolzam/telar/apps/social/users/models"
	usersRepository "github.com/qolzam/telar/apps/social/users/repository"
	usersServices "github.com/qolzam/telar/apps/social/users/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graph struct {
	posts         PostService
	users         usersServices.UserService
	notifications notificationServices.NotificationService
}

func newGraph(t *testing.T) *graph {
	return buildGraph(t, nil, nil)
}

// buildGraph wires real services over one memory store. wrap, when set, decorates
// the user repository seen by the post service.
func buildGraph(t *testing.T, cacheService *cache.GenericCacheService, wrap func(usersRepository.UserRepository) usersRepository.UserRepository) *graph {
	t.Helper()
	db := memory.NewMemoryRepository()
	t.Cleanup(func() { _ = db.Close() })

	userRepo := usersRepository.NewDocumentRepository(db)
	postUsers := userRepo
	if wrap != nil {
		postUsers = wrap(userRepo)
	}
	postRepo := repository.NewDocumentRepository(db)
	notifier := notificationServices.NewNotificationService(notificationRepository.NewDocumentRepository(db), nil)
	posts := NewPostService(postRepo, postUsers, cacheService, notifier)

	return &graph{
		posts:         posts,
		users:         usersServices.NewUserService(userRepo, postRepo, notifier, posts),
		notifications: notifier,
	}
}

func (g *graph) createUser(t *testing.T, email string) *usermodels.User {
	t.Helper()
	user, err := g.users.CreateUser(context.Background(), &usermodels.CreateUserRequest{Email: email})
	require.NoError(t, err)
	return user
}

func TestExampleFlow(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)

	owner := g.createUser(t, "a@x.com")
	liker := g.createUser(t, "u1@x.com")

	post, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com", Content: "hi", Caption: "c"})
	require.NoError(t, err)

	stored, err := g.users.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalPosts)

	liked, err := g.posts.LikePost(ctx, post.ID, &models.LikeRequest{UserID: liker.ID})
	require.NoError(t, err)
	assert.Len(t, liked.Likes, 1)

	_, err = g.posts.LikePost(ctx, post.ID, &models.LikeRequest{UserID: liker.ID})
	assert.ErrorIs(t, err, postsErrors.ErrAlreadyLiked)

	view, err := g.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, view.Likes, 1)
	assert.Equal(t, liker.Email, view.Likes[0].User.Email)

	notifications, err := g.notifications.ListNotifications(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "u1@x.com liked your post.", notifications[0].Text)
}

func TestCreatePostIncrementsOwnerExactlyOnce(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	owner := g.createUser(t, "Mixed@X.com")

	for i := 0; i < 3; i++ {
		before, err := g.users.GetUser(ctx, owner.ID)
		require.NoError(t, err)

		post, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "mixed@x.com", Content: "hi"})
		require.NoError(t, err)

		after, err := g.users.GetUser(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, before.TotalPosts+1, after.TotalPosts)
		assert.Len(t, after.Posts, len(before.Posts)+1)
		assert.Equal(t, post.ID, after.Posts[len(after.Posts)-1])
	}
}

func TestLikeThenUnlike(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	g.createUser(t, "a@x.com")
	post, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = g.posts.LikePost(ctx, post.ID, &models.LikeRequest{UserID: "u1"})
	require.NoError(t, err)
	unliked, err := g.posts.UnlikePost(ctx, post.ID, &models.LikeRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, -1, unliked.LikedBy("u1"))

	_, err = g.posts.UnlikePost(ctx, post.ID, &models.LikeRequest{UserID: "u1"})
	assert.ErrorIs(t, err, postsErrors.ErrNotLiked)
}

func TestDeletePostRemovesBothSides(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	owner := g.createUser(t, "a@x.com")

	keep, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com", Content: "keep"})
	require.NoError(t, err)
	drop, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com", Content: "drop"})
	require.NoError(t, err)

	require.NoError(t, g.posts.DeletePost(ctx, drop.ID))

	_, err = g.posts.GetPost(ctx, drop.ID)
	assert.ErrorIs(t, err, postsErrors.ErrPostNotFound)

	stored, err := g.users.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, stored.Posts)
	assert.Equal(t, 1, stored.TotalPosts)

	assert.ErrorIs(t, g.posts.DeletePost(ctx, drop.ID), postsErrors.ErrPostNotFound)
}

func TestFollowTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	g.createUser(t, "a@x.com")
	b := g.createUser(t, "b@x.com")

	req := &usermodels.FollowRequest{UserEmail: "a@x.com", FollowEmail: "b@x.com"}
	_, err := g.users.FollowUser(ctx, req)
	require.NoError(t, err)
	_, err = g.users.FollowUser(ctx, req)
	assert.ErrorIs(t, err, usersErrors.ErrAlreadyFollowing)

	a, err := g.users.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x.com"}, a.Following)

	followee, err := g.users.GetUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, followee.Followers)

	notifications, err := g.notifications.ListNotifications(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, notifications, 1, "only the successful follow notifies")
}

func TestUpdateUserEmptyNameLeavesNameUnchanged(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	g.createUser(t, "a@x.com")

	name, empty, bio := "Alice", "", "bio"
	_, err := g.users.UpdateUser(ctx, &usermodels.UpdateUserRequest{Email: "a@x.com", Name: &name})
	require.NoError(t, err)
	updated, err := g.users.UpdateUser(ctx, &usermodels.UpdateUserRequest{Email: "a@x.com", Name: &empty, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)

	_, err = g.users.UpdateUser(ctx, &usermodels.UpdateUserRequest{Email: "a@x.com", Name: &empty})
	assert.ErrorIs(t, err, usersErrors.ErrInvalidRequest)
}

func TestListPostsNewestFirstAndUserPosts(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	a := g.createUser(t, "a@x.com")
	g.createUser(t, "b@x.com")

	first, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com", Content: "1"})
	require.NoError(t, err)
	_, err = g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "b@x.com", Content: "2"})
	require.NoError(t, err)
	third, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com", Content: "3"})
	require.NoError(t, err)

	all, err := g.posts.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, first.ID, all[2].ID)
	assert.Equal(t, "a@x.com", all[0].User.Email)

	mine, err := g.posts.ListUserPosts(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)

	profile, err := g.users.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, profile.Posts, 2)
	assert.Equal(t, first.ID, profile.Posts[0].ID)
}

func TestCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	g.createUser(t, "a@x.com")
	commenter := g.createUser(t, "c@x.com")
	post, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com"})
	require.NoError(t, err)

	commented, err := g.posts.AddComment(ctx, post.ID, &models.CommentRequest{UserID: commenter.ID, Text: "nice"})
	require.NoError(t, err)
	require.Len(t, commented.Comments, 1)

	view, err := g.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "c@x.com", view.Comments[0].User.Email)

	cleared, err := g.posts.DeleteComment(ctx, post.ID, commented.Comments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Comments)

	_, err = g.posts.DeleteComment(ctx, post.ID, commented.Comments[0].ID)
	assert.ErrorIs(t, err, postsErrors.ErrCommentNotFound)
}

// gatedUsers blocks the first FindByIDs call until release is closed.
type gatedUsers struct {
	usersRepository.UserRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedUsers) FindByIDs(ctx context.Context, ids []string) ([]*usermodels.User, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.UserRepository.FindByIDs(ctx, ids)
}

// failingUpdates makes every user update fail.
type failingUpdates struct {
	usersRepository.UserRepository
}

func (failingUpdates) Update(ctx context.Context, user *usermodels.User) error {
	return errors.New("write refused")
}

func TestListPostsDoesNotCacheReadOverlappingWrite(t *testing.T) {
	ctx := context.Background()
	cacheService, err := cache.NewCacheService(cache.DefaultCacheConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cacheService.Close() })

	gate := &gatedUsers{entered: make(chan struct{}), release: make(chan struct{})}
	g := buildGraph(t, cacheService, func(repo usersRepository.UserRepository) usersRepository.UserRepository {
		gate.UserRepository = repo
		return gate
	})
	g.createUser(t, "a@x.com")
	post, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := g.posts.ListPosts(ctx)
		done <- err
	}()

	select {
	case <-gate.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("ListPosts never reached user population")
	}
	_, err = g.posts.LikePost(ctx, post.ID, &models.LikeRequest{UserID: "u9"})
	require.NoError(t, err)
	close(gate.release)
	require.NoError(t, <-done)

	views, err := g.posts.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Len(t, views[0].Likes, 1)
}

func TestConcurrentLikesKeepOneLike(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	g.createUser(t, "a@x.com")
	post, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com"})
	require.NoError(t, err)

	const workers = 50
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.posts.LikePost(ctx, post.ID, &models.LikeRequest{UserID: "u1"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, postsErrors.ErrAlreadyLiked)
	}
	assert.Equal(t, 1, succeeded)

	view, err := g.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, view.Likes, 1)
}

func TestCreatePostRollsBackWhenOwnerUpdateFails(t *testing.T) {
	ctx := context.Background()
	g := buildGraph(t, nil, func(repo usersRepository.UserRepository) usersRepository.UserRepository {
		return failingUpdates{repo}
	})
	owner := g.createUser(t, "a@x.com")

	_, err := g.posts.CreatePost(ctx, &models.CreatePostRequest{Email: "a@x.com", Content: "hi"})
	assert.ErrorIs(t, err, postsErrors.ErrDatabaseOperation)

	posts, err := g.posts.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	stored, err := g.users.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.TotalPosts)
	assert.Empty(t, stored.Posts)
}
