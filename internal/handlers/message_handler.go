package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
)

// MessageHandler handles HTTP requests related to direct messages
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
	}
}

// RegisterMessageRoutes registers direct-message routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages", h.SendMessage)
	g.GET("/messages/unread-count", h.GetUnreadCount)
	g.GET("/messages/:user_id", h.GetConversation)
	g.PUT("/messages/:user_id/read", h.MarkConversationRead)
}

// SendMessage appends a message to the conversation between the caller and the
// receiver. Messaging yourself is rejected. The conversation id is derived
// from the two participant ids, so both sides land in the same thread.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.ReceiverID == user.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot message yourself")
	}

	receiver, err := h.userRepository.GetUserByID(req.ReceiverID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Receiver not found")
	}

	msg := &models.Message{
		ConversationID: models.ConversationID(user.ID, receiver.ID),
		SenderID:       user.ID,
		ReceiverID:     receiver.ID,
		Body:           req.Body,
	}

	if err := h.messageRepository.CreateMessage(msg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, msg)
}

// GetConversation retrieves the full thread between the caller and the given
// user, oldest first.
func (h *MessageHandler) GetConversation(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	peerID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	peer, err := h.userRepository.GetUserByID(uint(peerID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	messages, err := h.messageRepository.GetConversation(models.ConversationID(user.ID, peer.ID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	peerCompact := peer.ToCompact()
	return c.JSON(http.StatusOK, echo.Map{
		"messages": messages,
		"peer":     peerCompact,
	})
}

// MarkConversationRead marks as read every message in the thread with the
// given user where the caller is the receiver. Messages the caller sent keep
// their flag so the peer's read state is unaffected.
func (h *MessageHandler) MarkConversationRead(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	peerID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	conversationID := models.ConversationID(user.ID, uint(peerID))
	if err := h.messageRepository.MarkConversationRead(conversationID, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetUnreadCount returns the caller's number of unread messages across all
// conversations
func (h *MessageHandler) GetUnreadCount(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	count, err := h.messageRepository.GetUnreadCount(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"count": count})
}
