package models

import "time"

// Comment belongs to one post and optionally to a parent comment, forming a
// reply tree. AuthorName is a snapshot taken at creation so later renames do
// not rewrite history. IsEdited is monotonic: once set it stays set even if
// the body is edited back to the original text.
type Comment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	PostID          string    `json:"post_id" gorm:"index"` // MongoDB ObjectID as string
	AuthorID        uint      `json:"author_id" gorm:"index"`
	AuthorName      string    `json:"author_name"`
	ParentCommentID *uint     `json:"parent_comment_id,omitempty" gorm:"index"`
	Body            string    `json:"body"`
	IsEdited        bool      `json:"is_edited" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateCommentRequest defines the request body for creating a comment or reply
type CreateCommentRequest struct {
	ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
	Body            string `json:"body" validate:"required,min=1,max=2000"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}
