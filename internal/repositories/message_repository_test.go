package repositories

import (
	"testing"

	"github.com/quillspace/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendMessage(t *testing.T, repo MessageRepository, senderID, receiverID uint, body string) *models.Message {
	t.Helper()
	msg := &models.Message{
		ConversationID: models.ConversationID(senderID, receiverID),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
	}
	require.NoError(t, repo.CreateMessage(msg))
	return msg
}

func TestGetConversationInterleavesBothDirections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresMessageRepository(db)

	sendMessage(t, repo, 1, 2, "hi")
	sendMessage(t, repo, 2, 1, "hey")
	sendMessage(t, repo, 1, 2, "how are you")
	sendMessage(t, repo, 3, 1, "unrelated thread")

	messages, err := repo.GetConversation(models.ConversationID(2, 1))
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "hi", messages[0].Body)
	assert.Equal(t, "hey", messages[1].Body)
	assert.Equal(t, "how are you", messages[2].Body)
}

func TestMarkConversationReadOnlyFlipsReceiverRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresMessageRepository(db)

	sendMessage(t, repo, 1, 2, "to user 2")
	sendMessage(t, repo, 2, 1, "to user 1")
	sendMessage(t, repo, 3, 2, "other conversation")

	// User 2 reads the thread with user 1
	require.NoError(t, repo.MarkConversationRead(models.ConversationID(1, 2), 2))

	messages, err := repo.GetConversation(models.ConversationID(1, 2))
	require.NoError(t, err)
	for _, msg := range messages {
		if msg.ReceiverID == 2 {
			assert.True(t, msg.IsRead, "message %d to user 2 should be read", msg.ID)
		} else {
			assert.False(t, msg.IsRead, "message %d to user 1 should stay unread", msg.ID)
		}
	}

	// The thread with user 3 is untouched
	count, err := repo.CountUnreadFrom(3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUnreadCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresMessageRepository(db)

	sendMessage(t, repo, 1, 2, "a")
	sendMessage(t, repo, 1, 2, "b")
	sendMessage(t, repo, 3, 2, "c")
	sendMessage(t, repo, 2, 1, "d")

	total, err := repo.GetUnreadCount(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	fromOne, err := repo.CountUnreadFrom(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fromOne)
}

func TestGetMessagesInvolvingCoversBothRoles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresMessageRepository(db)

	sendMessage(t, repo, 1, 2, "sent by 1")
	sendMessage(t, repo, 3, 1, "received by 1")
	sendMessage(t, repo, 2, 3, "not involving 1")

	messages, err := repo.GetMessagesInvolving(1)
	require.NoError(t, err)
	require.Len(t, messages, 2)
}
