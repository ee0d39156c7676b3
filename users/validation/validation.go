package validation

import (
	"strings"

	usersErrors "github.com/qolzam/telar/apps/social/users/errors"
	"github.com/qolzam/telar/apps/social/users/models"
)

const maxEmailLength = 320

// UpdateFieldsMessage is returned when an update carries nothing to change.
const UpdateFieldsMessage = "You must provide at least one field to update: name, bio, profilePicture, totalPosts"

// ValidateEmail checks that an email was supplied
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return usersErrors.NewValidationError("Email is required")
	}
	if len(email) > maxEmailLength {
		return usersErrors.NewValidationError("Email is too long")
	}
	return nil
}

// ValidateCreateUserRequest validates the create user request
func ValidateCreateUserRequest(req *models.CreateUserRequest) error {
	if req == nil {
		return usersErrors.NewValidationError("Request body is required")
	}
	return ValidateEmail(req.Email)
}

// ValidateUpdateUserRequest requires the email and at least one applicable field.
// Empty strings do not count as provided.
func ValidateUpdateUserRequest(req *models.UpdateUserRequest) error {
	if req == nil {
		return usersErrors.NewValidationError("Request body is required")
	}
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if !provided(req.Name) && !provided(req.Bio) && !provided(req.ProfilePicture) && req.TotalPosts == nil {
		return usersErrors.NewValidationError(UpdateFieldsMessage)
	}
	return nil
}

// ValidateFollowRequest requires both sides of the relationship
func ValidateFollowRequest(req *models.FollowRequest) error {
	if req == nil || req.UserEmail == "" || req.FollowEmail == "" {
		return usersErrors.NewValidationError("Both userId and followId are required.")
	}
	if req.UserEmail == req.FollowEmail {
		return usersErrors.ErrSelfFollow
	}
	return nil
}

func provided(s *string) bool {
	return s != nil && *s != ""
}
