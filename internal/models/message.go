package models

import (
	"fmt"
	"time"
)

// Message is a direct message between two users. Rows are append-only except
// for the read flag, which only the receiver's mark-read action mutates.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"index"`
	SenderID       uint      `json:"sender_id" gorm:"index"`
	ReceiverID     uint      `json:"receiver_id" gorm:"index"`
	Body           string    `json:"body"`
	IsRead         bool      `json:"is_read" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Body       string `json:"body" validate:"required,min=1,max=5000"`
}

// ConversationID derives the deterministic two-party conversation identifier:
// the participant ids sorted ascending and joined. Both participants compute
// the same id regardless of who is sender or receiver.
func ConversationID(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}
