package repositories

import (
	"github.com/quillspace/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	ListByRecipient(recipientID uint, cursor uint, limit int) ([]models.Notification, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAllAsRead(recipientID uint) error
	HasFollowNotification(recipientID, triggeredBy uint) (bool, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a NotificationRepository backed by PostgreSQL
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByRecipient returns the recipient's notifications newest first. A zero
// cursor starts from the top; otherwise only rows with id below the cursor are
// returned. IDs are monotonically assigned, so id order is creation order.
func (r *postgresNotificationRepository) ListByRecipient(recipientID uint, cursor uint, limit int) ([]models.Notification, error) {
	q := r.db.Where("recipient_id = ?", recipientID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}

	var notifications []models.Notification
	err := q.Order("id DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

// MarkAllAsRead flips the recipient's entire unread set in one statement.
// Other users' notifications are untouched.
func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) error {
	return r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Update("is_read", true).Error
}

// HasFollowNotification reports whether any follow-type notification from
// triggeredBy to recipientID already exists, read or unread. Used to keep
// repeated follow/unfollow cycles from spamming the target.
func (r *postgresNotificationRepository) HasFollowNotification(recipientID, triggeredBy uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND triggered_by = ? AND type = ?", recipientID, triggeredBy, models.NotificationTypeFollow).
		Count(&count).Error
	return count > 0, err
}
