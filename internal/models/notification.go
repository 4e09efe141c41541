package models

import "time"

// Notification types produced by the interaction handlers.
const (
	NotificationTypeFollow  = "follow"
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypePost    = "post"
)

// Notification is an append-only fan-out record keyed by recipient. Follow
// notifications are deduplicated per (recipient, triggered_by) pair and
// self-notifications are suppressed; both rules live in handlers.Notifier.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	Type        string    `json:"type" gorm:"size:30;index"`
	Message     string    `json:"message"`
	TriggeredBy uint      `json:"triggered_by" gorm:"index"`
	PostID      string    `json:"post_id,omitempty"`
	CommentID   *uint     `json:"comment_id,omitempty"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
