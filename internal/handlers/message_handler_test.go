package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMessageHandler(db *gorm.DB) *MessageHandler {
	return NewMessageHandler(
		repositories.NewPostgresMessageRepository(db),
		repositories.NewPostgresUserRepository(db),
	)
}

func TestSendMessageLandsInSharedConversation(t *testing.T) {
	db := setupTestDB(t)
	h := newMessageHandler(db)

	alice := seedUser(t, db, "Alice", "uid-alice")
	bob := seedUser(t, db, "Bob", "uid-bob")

	body := fmt.Sprintf(`{"receiver_id":%d,"body":"hello"}`, bob.ID)
	c, rec := newTestContext(http.MethodPost, "/", body, alice.FirebaseUID)
	require.NoError(t, h.SendMessage(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var sent models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	assert.Equal(t, models.ConversationID(alice.ID, bob.ID), sent.ConversationID)
	assert.Equal(t, alice.ID, sent.SenderID)
	assert.False(t, sent.IsRead)

	// The reply from Bob joins the same thread
	body = fmt.Sprintf(`{"receiver_id":%d,"body":"hi back"}`, alice.ID)
	c, rec = newTestContext(http.MethodPost, "/", body, bob.FirebaseUID)
	require.NoError(t, h.SendMessage(c))

	var reply models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, sent.ConversationID, reply.ConversationID)
}

func TestSendMessageRejectsSelfAndUnknownReceiver(t *testing.T) {
	db := setupTestDB(t)
	h := newMessageHandler(db)

	alice := seedUser(t, db, "Alice", "uid-alice")

	body := fmt.Sprintf(`{"receiver_id":%d,"body":"note to self"}`, alice.ID)
	c, _ := newTestContext(http.MethodPost, "/", body, alice.FirebaseUID)
	err := h.SendMessage(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

	c, _ = newTestContext(http.MethodPost, "/", `{"receiver_id":9999,"body":"void"}`, alice.FirebaseUID)
	err = h.SendMessage(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestMarkConversationReadEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	h := newMessageHandler(db)

	alice := seedUser(t, db, "Alice", "uid-alice")
	bob := seedUser(t, db, "Bob", "uid-bob")

	conv := models.ConversationID(alice.ID, bob.ID)
	require.NoError(t, db.Create(&models.Message{ConversationID: conv, SenderID: bob.ID, ReceiverID: alice.ID, Body: "a"}).Error)
	require.NoError(t, db.Create(&models.Message{ConversationID: conv, SenderID: bob.ID, ReceiverID: alice.ID, Body: "b"}).Error)

	c, rec := newTestContext(http.MethodGet, "/", "", alice.FirebaseUID)
	require.NoError(t, h.GetUnreadCount(c))
	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp["count"])

	c, _ = newTestContext(http.MethodPut, "/", "", alice.FirebaseUID)
	c.SetPath("/messages/:user_id/read")
	c.SetParamNames("user_id")
	c.SetParamValues(fmt.Sprintf("%d", bob.ID))
	require.NoError(t, h.MarkConversationRead(c))

	c, rec = newTestContext(http.MethodGet, "/", "", alice.FirebaseUID)
	require.NoError(t, h.GetUnreadCount(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp["count"])
}
