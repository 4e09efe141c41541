package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a blog post stored in MongoDB. ImageObjectKey is a blob-store
// reference, never a resolved URL; URLs are resolved at read time so that
// storage renames or provider changes are reflected immediately.
type Post struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title          string             `json:"title" bson:"title"`
	Body           string             `json:"body" bson:"body"`
	AuthorID       string             `json:"author_id" bson:"author_id"` // Firebase UID of the author
	ImageObjectKey string             `json:"-" bson:"image_object_key,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title          string `json:"title" validate:"required,min=1,max=200"`
	Body           string `json:"body" validate:"required,min=1"`
	ImageObjectKey string `json:"image_object_key,omitempty"`
}
