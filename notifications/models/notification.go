package models

import (
	"time"
)

// Notification is the document stored in the notifications collection.
type Notification struct {
	ID        string    `json:"_id" bson:"_id"`
	User      string    `json:"user" bson:"user"`
	Text      string    `json:"text" bson:"text"`
	Link      string    `json:"link" bson:"link"`
	PostLink  string    `json:"postLink" bson:"postLink"`
	Image     string    `json:"image" bson:"image"`
	IsSeen    bool      `json:"isSeen" bson:"isSeen"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CreatedEvent is published on the notifications.created subject.
type CreatedEvent struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Link      string    `json:"link,omitempty"`
	PostLink  string    `json:"postLink,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type MarkAllSeenResponse struct {
	Updated int64 `json:"updated"`
}
