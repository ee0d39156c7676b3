package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/internal/cache"
	"github.com/qolzam/telar/apps/social/internal/database/memory"
	"github.com/qolzam/telar/apps/social/internal/events"
	"github.com/qolzam/telar/apps/social/internal/middleware/requestid"
	platform "github.com/qolzam/telar/apps/social/internal/platform"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*fiber.App, *platform.BaseService) {
	t.Helper()
	cfg, err := platformconfig.LoadFromMap(map[string]string{"DB_TYPE": "memory"})
	require.NoError(t, err)

	cacheService, err := cache.NewCacheService(cache.DefaultCacheConfig())
	require.NoError(t, err)

	base := platform.NewBaseServiceWithRepo(memory.NewMemoryRepository(), "memory")
	t.Cleanup(func() { _ = base.Close() })

	app := newApp(dependencies{
		config:    cfg,
		base:      base,
		cache:     cacheService,
		publisher: events.NoopPublisher{},
	})
	return app, base
}

func call(t *testing.T, app *fiber.App, method, target string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type userBody struct {
	ID         string   `json:"_id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Posts      []string `json:"posts"`
	TotalPosts int      `json:"totalPosts"`
	Following  []string `json:"following"`
	Followers  []string `json:"followers"`
}

type postBody struct {
	ID    string `json:"_id"`
	User  string `json:"User"`
	Likes []struct {
		User string `json:"user"`
	} `json:"likes"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func TestHealth(t *testing.T) {
	app, base := newTestServer(t)

	var healthy map[string]interface{}
	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/health", nil, &healthy))
	assert.Equal(t, "ok", healthy["status"])
	assert.Equal(t, "memory", healthy["database"])
	assert.Contains(t, healthy, "cache")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(requestid.HeaderRequestID))

	require.NoError(t, base.Close())
	var down errorBody
	assert.Equal(t, http.StatusServiceUnavailable, call(t, app, http.MethodGet, "/health", nil, &down))
	assert.Equal(t, "SERVICE_UNAVAILABLE", down.Code)
	assert.NotEmpty(t, down.Details)
}

func TestErrorBodiesShareOneShape(t *testing.T) {
	app, _ := newTestServer(t)

	var malformed errorBody
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/posts/not-a-uuid", nil, &malformed))
	assert.Equal(t, "NOT_FOUND", malformed.Code)
	assert.NotEmpty(t, malformed.Message)
	assert.Equal(t, "postId must be a valid UUID", malformed.Details)

	var unknown errorBody
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/nowhere", nil, &unknown))
	assert.Equal(t, "NOT_FOUND", unknown.Code)
	assert.Equal(t, "Not Found", unknown.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestServer(t)

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "social_http_requests_total"))
}

func TestSocialFlow(t *testing.T) {
	app, _ := newTestServer(t)

	var owner, liker userBody
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/users", map[string]string{"email": "a@x.com"}, &owner))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/users", map[string]string{"email": "u1@x.com"}, &liker))

	var dup errorBody
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/users", map[string]string{"email": "a@x.com"}, &dup))

	var post postBody
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/posts",
		map[string]string{"email": "a@x.com", "content": "hello", "caption": "first"}, &post))
	assert.Equal(t, owner.ID, post.User)

	var stored userBody
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/users/"+owner.ID, nil, &stored))
	assert.Equal(t, 1, stored.TotalPosts)
	assert.Equal(t, []string{post.ID}, stored.Posts)

	var liked postBody
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/posts/"+post.ID+"/like", map[string]string{"userId": liker.ID}, &liked))
	require.Len(t, liked.Likes, 1)
	assert.Equal(t, liker.ID, liked.Likes[0].User)

	var conflict errorBody
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/posts/"+post.ID+"/like", map[string]string{"userId": liker.ID}, &conflict))
	assert.Equal(t, "User already liked this post", conflict.Message)

	var populated []map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/posts", nil, &populated))
	require.Len(t, populated, 1)
	author, ok := populated[0]["User"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a@x.com", author["email"])

	var notifications []map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/notifications/"+owner.ID, nil, &notifications))
	require.Len(t, notifications, 1)
	assert.Equal(t, false, notifications[0]["isSeen"])

	var seenAll map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/notifications/"+owner.ID+"/seen-all", nil, &seenAll))
	assert.Equal(t, float64(1), seenAll["updated"])

	var deleted map[string]string
	require.Equal(t, http.StatusOK, call(t, app, http.MethodDelete, "/posts/"+post.ID, nil, &deleted))
	assert.Equal(t, "Post deleted successfully", deleted["message"])

	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/users/"+owner.ID, nil, &stored))
	assert.Equal(t, 0, stored.TotalPosts)
	assert.Empty(t, stored.Posts)

	var missing errorBody
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/posts/"+post.ID, nil, &missing))
	assert.Equal(t, "Post not found", missing.Message)
}

func TestFollowFlow(t *testing.T) {
	app, _ := newTestServer(t)

	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/users", map[string]string{"email": "a@x.com"}, nil))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/users", map[string]string{"email": "b@x.com"}, nil))

	follow := map[string]string{"userEmail": "a@x.com", "followEmail": "b@x.com"}
	var first map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/users/follow", follow, &first))
	assert.Equal(t, "You are now following the user.", first["message"])

	var again errorBody
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/users/follow", follow, &again))
	assert.Equal(t, "You are already following this user.", again.Message)

	var profile userBody
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/users/lookup?email=a@x.com", nil, &profile))
	assert.Equal(t, []string{"b@x.com"}, profile.Following)

	var unfollowed map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/users/unfollow", follow, &unfollowed))
	assert.Equal(t, "You have unfollowed the user.", unfollowed["message"])

	var notFollowing errorBody
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/users/unfollow", follow, &notFollowing))
	assert.Equal(t, "You are not following this user.", notFollowing.Message)
}

func TestUpdateUserFlow(t *testing.T) {
	app, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/users", map[string]string{"email": "a@x.com"}, nil))

	var updated struct {
		Message string   `json:"message"`
		User    userBody `json:"user"`
	}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/users", map[string]string{"email": "a@x.com", "name": "Ann"}, &updated))
	assert.Equal(t, "User updated successfully", updated.Message)
	assert.Equal(t, "Ann", updated.User.Name)

	var invalid errorBody
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPut, "/users", map[string]string{"email": "a@x.com"}, &invalid))

	var missing errorBody
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodPut, "/users", map[string]string{"email": "z@x.com", "name": "Z"}, &missing))
}
