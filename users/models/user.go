// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	postmodels "github.com/qolzam/telar/apps/social/posts/models"
)

// User is the document stored in the users collection.
// Following and Followers hold email addresses, not user ids.
type User struct {
	ID             string    `json:"_id" bson:"_id"`
	Email          string    `json:"email" bson:"email"`
	Name           string    `json:"name" bson:"name"`
	Bio            string    `json:"bio" bson:"bio"`
	ProfilePicture string    `json:"profilePicture" bson:"profilePicture"`
	Posts          []string  `json:"posts" bson:"posts"`
	TotalPosts     int       `json:"totalPosts" bson:"totalPosts"`
	Following      []string  `json:"following" bson:"following"`
	Followers      []string  `json:"followers" bson:"followers"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Normalize replaces nil slices so documents always serialize arrays.
func (u *User) Normalize() *User {
	if u.Posts == nil {
		u.Posts = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Followers == nil {
		u.Followers = []string{}
	}
	return u
}

// DisplayName is the name used in messages, falling back to a generic label.
func (u *User) DisplayName(fallback string) string {
	if u.Name != "" {
		return u.Name
	}
	return fallback
}

// IsFollowing performs the linear existence check over Following.
func (u *User) IsFollowing(email string) bool {
	return indexOf(u.Following, email) >= 0
}

// Author projects the user for embedding in populated post views.
func (u *User) Author() *postmodels.Author {
	return &postmodels.Author{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
	}
}

// Remove returns values without the first occurrence of value.
func Remove(values []string, value string) []string {
	i := indexOf(values, value)
	if i < 0 {
		return values
	}
	out := make([]string, 0, len(values)-1)
	out = append(out, values[:i]...)
	return append(out, values[i+1:]...)
}

func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}

// UserProfile is a user with the posts reference sequence populated.
type UserProfile struct {
	User
	Posts []postmodels.Post `json:"posts"`
}

type CreateUserRequest struct {
	Email string `json:"email"`
}

// EmailLookupRequest is read from a JSON body or a query string.
type EmailLookupRequest struct {
	Email string `json:"email" schema:"email"`
}

// UpdateUserRequest carries optional fields. Empty strings count as not provided.
// FollowersCount and FollowingCount are accepted for compatibility and ignored.
type UpdateUserRequest struct {
	Email          string  `json:"email"`
	Name           *string `json:"name"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
	TotalPosts     *int    `json:"totalPosts"`
	FollowersCount *int    `json:"followersCount"`
	FollowingCount *int    `json:"followingCount"`
}

type FollowRequest struct {
	UserEmail   string `json:"userEmail"`
	FollowEmail string `json:"followEmail"`
}

// UserActionResponse pairs a confirmation message with the affected user.
type UserActionResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
