package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/users"
	usersErrors "github.com/qolzam/telar/apps/social/users/errors"
	"github.com/qolzam/telar/apps/social/users/handlers"
	"github.com/qolzam/telar/apps/social/users/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockUserService implements the UserService interface for testing
type MockUserService struct {
	listUsersFunc      func(ctx context.Context) ([]*models.User, error)
	getUserFunc        func(ctx context.Context, userID string) (*models.User, error)
	getUserByEmailFunc func(ctx context.Context, email string) (*models.UserProfile, error)
	createUserFunc     func(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	updateUserFunc     func(ctx context.Context, req *models.UpdateUserRequest) (*models.User, error)
	followUserFunc     func(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error)
	unfollowUserFunc   func(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, userID)
	}
	return nil, usersErrors.ErrUserNotFound
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	if m.getUserByEmailFunc != nil {
		return m.getUserByEmailFunc(ctx, email)
	}
	return nil, usersErrors.ErrUserNotFound
}

func (m *MockUserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockUserService) UpdateUser(ctx context.Context, req *models.UpdateUserRequest) (*models.User, error) {
	if m.updateUserFunc != nil {
		return m.updateUserFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockUserService) FollowUser(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error) {
	if m.followUserFunc != nil {
		return m.followUserFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockUserService) UnfollowUser(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error) {
	if m.unfollowUserFunc != nil {
		return m.unfollowUserFunc(ctx, req)
	}
	return nil, nil
}

func newTestApp(svc *MockUserService) *fiber.App {
	app := fiber.New()
	users.RegisterRoutes(app, &users.UsersHandlers{UserHandler: handlers.NewUserHandler(svc)})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestCreateUser(t *testing.T) {
	svc := &MockUserService{
		createUserFunc: func(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
			return &models.User{ID: "u1", Email: req.Email, Posts: []string{}, Following: []string{}, Followers: []string{}}, nil
		},
	}

	resp, body := doJSON(t, newTestApp(svc), http.MethodPost, "/users", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, "u1", body["_id"])
}

func TestCreateUserDuplicate(t *testing.T) {
	svc := &MockUserService{
		createUserFunc: func(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
			return nil, usersErrors.ErrEmailTaken
		},
	}

	resp, body := doJSON(t, newTestApp(svc), http.MethodPost, "/users", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, usersErrors.CodeDuplicateKey, body["code"])
}

func TestCreateUserMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := newTestApp(&MockUserService{}).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUser(t *testing.T) {
	id := uuid.Must(uuid.NewV4()).String()
	svc := &MockUserService{
		getUserFunc: func(ctx context.Context, userID string) (*models.User, error) {
			if userID == id {
				return &models.User{ID: id, Email: "a@x.com"}, nil
			}
			return nil, usersErrors.ErrUserNotFound
		},
	}
	app := newTestApp(svc)

	resp, body := doJSON(t, app, http.MethodGet, "/users/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@x.com", body["email"])

	resp, body = doJSON(t, app, http.MethodGet, "/users/"+uuid.Must(uuid.NewV4()).String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", body["message"])
}

func TestGetUserRejectsMalformedID(t *testing.T) {
	called := false
	svc := &MockUserService{
		getUserFunc: func(ctx context.Context, userID string) (*models.User, error) {
			called = true
			return nil, nil
		},
	}

	resp, _ := doJSON(t, newTestApp(svc), http.MethodGet, "/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, called)
}

func TestLookupUserByQuery(t *testing.T) {
	var got string
	svc := &MockUserService{
		getUserByEmailFunc: func(ctx context.Context, email string) (*models.UserProfile, error) {
			got = email
			return &models.UserProfile{User: models.User{Email: email}}, nil
		},
	}

	resp, body := doJSON(t, newTestApp(svc), http.MethodGet, "/users/lookup?email=a%2Bb%40x.com&extra=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a+b@x.com", got)
	assert.Equal(t, "a+b@x.com", body["email"])
}

func TestGetUserByEmailBody(t *testing.T) {
	svc := &MockUserService{}

	resp, body := doJSON(t, newTestApp(svc), http.MethodPost, "/users/email", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, usersErrors.CodeUserNotFound, body["code"])
}

func TestUpdateUser(t *testing.T) {
	svc := &MockUserService{
		updateUserFunc: func(ctx context.Context, req *models.UpdateUserRequest) (*models.User, error) {
			require.NotNil(t, req.Name)
			return &models.User{Email: req.Email, Name: *req.Name}, nil
		},
	}

	resp, body := doJSON(t, newTestApp(svc), http.MethodPut, "/users", map[string]string{"email": "a@x.com", "name": "Ann"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User updated successfully", body["message"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ann", user["name"])
}

func TestUpdateUserValidation(t *testing.T) {
	svc := &MockUserService{
		updateUserFunc: func(ctx context.Context, req *models.UpdateUserRequest) (*models.User, error) {
			return nil, usersErrors.NewValidationError("Email is required")
		},
	}

	resp, body := doJSON(t, newTestApp(svc), http.MethodPut, "/users", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email is required", body["message"])
}

func TestFollowErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{usersErrors.ErrAlreadyFollowing, http.StatusConflict},
		{usersErrors.ErrNotFollowing, http.StatusBadRequest},
		{usersErrors.ErrSelfFollow, http.StatusBadRequest},
		{usersErrors.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			fail := func(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error) {
				return nil, tc.err
			}
			app := newTestApp(&MockUserService{followUserFunc: fail, unfollowUserFunc: fail})
			payload := map[string]string{"userEmail": "a@x.com", "followEmail": "b@x.com"}

			resp, _ := doJSON(t, app, http.MethodPost, "/users/follow", payload)
			assert.Equal(t, tc.status, resp.StatusCode)
			resp, _ = doJSON(t, app, http.MethodPost, "/users/unfollow", payload)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestFollowUser(t *testing.T) {
	svc := &MockUserService{
		followUserFunc: func(ctx context.Context, req *models.FollowRequest) (*models.UserActionResponse, error) {
			assert.Equal(t, "a@x.com", req.UserEmail)
			assert.Equal(t, "b@x.com", req.FollowEmail)
			return &models.UserActionResponse{Message: "You are now following Bob."}, nil
		},
	}

	resp, body := doJSON(t, newTestApp(svc), http.MethodPost, "/users/follow",
		map[string]string{"userEmail": "a@x.com", "followEmail": "b@x.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "You are now following Bob.", body["message"])
}
