package validation

import (
	"errors"
	"strings"
	"testing"

	usersErrors "github.com/qolzam/telar/apps/social/users/errors"
	"github.com/qolzam/telar/apps/social/users/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidateUpdateUserRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.UpdateUserRequest
		wantErr bool
	}{
		{"nil request", nil, true},
		{"missing email", &models.UpdateUserRequest{Name: strPtr("A")}, true},
		{"no fields", &models.UpdateUserRequest{Email: "a@x.com"}, true},
		{"empty name only", &models.UpdateUserRequest{Email: "a@x.com", Name: strPtr("")}, true},
		{"ignored counters only", &models.UpdateUserRequest{Email: "a@x.com", FollowersCount: intPtr(3), FollowingCount: intPtr(1)}, true},
		{"name", &models.UpdateUserRequest{Email: "a@x.com", Name: strPtr("A")}, false},
		{"bio", &models.UpdateUserRequest{Email: "a@x.com", Bio: strPtr("hello")}, false},
		{"picture", &models.UpdateUserRequest{Email: "a@x.com", ProfilePicture: strPtr("p.png")}, false},
		{"zero totalPosts", &models.UpdateUserRequest{Email: "a@x.com", TotalPosts: intPtr(0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdateUserRequest(tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, usersErrors.ErrInvalidRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUpdateUserRequestMessage(t *testing.T) {
	err := ValidateUpdateUserRequest(&models.UpdateUserRequest{Email: "a@x.com"})

	var userErr *usersErrors.UserError
	assert.True(t, errors.As(err, &userErr))
	assert.Equal(t, UpdateFieldsMessage, userErr.Message)
}

func TestValidateFollowRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateFollowRequest(nil), usersErrors.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateFollowRequest(&models.FollowRequest{UserEmail: "a@x.com"}), usersErrors.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateFollowRequest(&models.FollowRequest{FollowEmail: "b@x.com"}), usersErrors.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateFollowRequest(&models.FollowRequest{UserEmail: "a@x.com", FollowEmail: "a@x.com"}), usersErrors.ErrSelfFollow)
	assert.NoError(t, ValidateFollowRequest(&models.FollowRequest{UserEmail: "a@x.com", FollowEmail: "b@x.com"}))
}

func TestValidateCreateUserRequest(t *testing.T) {
	assert.Error(t, ValidateCreateUserRequest(nil))
	assert.Error(t, ValidateCreateUserRequest(&models.CreateUserRequest{Email: "  "}))
	assert.Error(t, ValidateCreateUserRequest(&models.CreateUserRequest{Email: strings.Repeat("a", maxEmailLength+1)}))
	assert.NoError(t, ValidateCreateUserRequest(&models.CreateUserRequest{Email: "a@x.com"}))
}
