// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"
)

// Like records a single user's like on a post. A user likes a post at most once.
type Like struct {
	User      string    `json:"user" bson:"user"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Comment struct {
	ID        string    `json:"_id" bson:"_id"`
	User      string    `json:"user" bson:"user"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Post is the document stored in the posts collection. User holds the owner id.
type Post struct {
	ID        string    `json:"_id" bson:"_id"`
	User      string    `json:"User" bson:"User"`
	Content   string    `json:"content" bson:"content"`
	Caption   string    `json:"caption" bson:"caption"`
	Likes     []Like    `json:"likes" bson:"likes"`
	Comments  []Comment `json:"comments" bson:"comments"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Normalize replaces nil slices so documents always serialize arrays.
func (p *Post) Normalize() *Post {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	return p
}

// LikedBy reports the index of userID's like, or -1.
func (p *Post) LikedBy(userID string) int {
	for i, like := range p.Likes {
		if like.User == userID {
			return i
		}
	}
	return -1
}

// CommentIndex reports the index of the comment with commentID, or -1.
func (p *Post) CommentIndex(commentID string) int {
	for i, comment := range p.Comments {
		if comment.ID == commentID {
			return i
		}
	}
	return -1
}

// UserIDs returns the distinct user ids a post references, owner first.
func (p *Post) UserIDs() []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, 1+len(p.Likes)+len(p.Comments))
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	add(p.User)
	for _, like := range p.Likes {
		add(like.User)
	}
	for _, comment := range p.Comments {
		add(comment.User)
	}
	return ids
}

// Author is the projection of a user embedded in populated post views.
type Author struct {
	ID             string `json:"_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

type LikeResponse struct {
	User      *Author   `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentResponse struct {
	ID        string    `json:"_id"`
	User      *Author   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostResponse is a post with its owner, like users and comment users populated.
// References to users that no longer resolve are null.
type PostResponse struct {
	ID        string            `json:"_id"`
	User      *Author           `json:"User"`
	Content   string            `json:"content"`
	Caption   string            `json:"caption"`
	Likes     []LikeResponse    `json:"likes"`
	Comments  []CommentResponse `json:"comments"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Populate builds the populated view of p from an id to author lookup.
func Populate(p *Post, authors map[string]*Author) PostResponse {
	resp := PostResponse{
		ID:        p.ID,
		User:      authors[p.User],
		Content:   p.Content,
		Caption:   p.Caption,
		Likes:     make([]LikeResponse, 0, len(p.Likes)),
		Comments:  make([]CommentResponse, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, like := range p.Likes {
		resp.Likes = append(resp.Likes, LikeResponse{User: authors[like.User], CreatedAt: like.CreatedAt})
	}
	for _, comment := range p.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			ID:        comment.ID,
			User:      authors[comment.User],
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
		})
	}
	return resp
}

// CreatePostRequest identifies the owner by email.
type CreatePostRequest struct {
	Email   string `json:"email"`
	Content string `json:"content"`
	Caption string `json:"caption"`
}

// UpdatePostRequest changes the caption only.
type UpdatePostRequest struct {
	Caption *string `json:"caption"`
}

type LikeRequest struct {
	UserID string `json:"userId"`
}

type CommentRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// PostActionResponse pairs a confirmation message with the updated post.
type PostActionResponse struct {
	Message string `json:"message"`
	Post    *Post  `json:"post"`
}
