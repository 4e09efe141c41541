package handlers

import (
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
)

// Notifier is the single chokepoint through which interaction handlers create
// notifications. It suppresses self-notifications, and for follow-type
// notifications it refuses to create a second one for the same
// (recipient, actor) pair, so repeated follow/unfollow cycles cannot spam
// the target.
type Notifier struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotifier creates a new Notifier
func NewNotifier(notifRepo repositories.NotificationRepository) *Notifier {
	return &Notifier{notificationRepository: notifRepo}
}

// Notify records a notification for recipientID triggered by actor. postID and
// commentID are optional references to the content that caused it.
func (n *Notifier) Notify(actor *models.User, recipientID uint, notifType, message, postID string, commentID *uint) error {
	if actor.ID == recipientID {
		return nil
	}

	if notifType == models.NotificationTypeFollow {
		exists, err := n.notificationRepository.HasFollowNotification(recipientID, actor.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	return n.notificationRepository.CreateNotification(&models.Notification{
		RecipientID: recipientID,
		Type:        notifType,
		Message:     message,
		TriggeredBy: actor.ID,
		PostID:      postID,
		CommentID:   commentID,
	})
}
