package repositories

import (
	"github.com/quillspace/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message operations
type MessageRepository interface {
	CreateMessage(msg *models.Message) error
	GetConversation(conversationID string) ([]models.Message, error)
	MarkConversationRead(conversationID string, receiverID uint) error
	GetUnreadCount(receiverID uint) (int64, error)
	CountUnreadFrom(senderID, receiverID uint) (int64, error)
	GetMessagesInvolving(userID uint) ([]models.Message, error)
}

type postgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a MessageRepository backed by PostgreSQL
func NewPostgresMessageRepository(db *gorm.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) CreateMessage(msg *models.Message) error {
	return r.db.Create(msg).Error
}

// GetConversation retrieves a conversation's messages in ascending creation
// order, so both directions interleave chronologically.
func (r *postgresMessageRepository) GetConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead flips the unread rows of one conversation where the
// caller is the receiver. The sender's own unread rows are untouched.
func (r *postgresMessageRepository) MarkConversationRead(conversationID string, receiverID uint) error {
	return r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, receiverID, false).
		Update("is_read", true).Error
}

func (r *postgresMessageRepository) GetUnreadCount(receiverID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).Where("receiver_id = ? AND is_read = ?", receiverID, false).Count(&count).Error
	return count, err
}

func (r *postgresMessageRepository) CountUnreadFrom(senderID, receiverID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Count(&count).Error
	return count, err
}

// GetMessagesInvolving retrieves every message sent or received by a user,
// newest first. Used to derive recent conversation partners.
func (r *postgresMessageRepository) GetMessagesInvolving(userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	return messages, err
}
