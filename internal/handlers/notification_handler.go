package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
)

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notificationRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// EnrichedNotification is a notification joined with the triggering user's
// current identity, resolved at read time.
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor,omitempty"`
}

// ListNotifications returns the caller's notifications newest first as a
// cursor page {items, isDone, continueCursor}. The cursor is the numeric id of
// the last item of the previous page; zero or absent starts from the top.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var cursor uint
	if raw := c.QueryParam("cursor"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
		}
		cursor = uint(parsed)
	}

	// Fetch one extra row to learn whether another page exists
	notifications, err := h.notificationRepository.ListByRecipient(user.ID, cursor, limit+1)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isDone := len(notifications) <= limit
	if !isDone {
		notifications = notifications[:limit]
	}

	continueCursor := ""
	if len(notifications) > 0 {
		continueCursor = strconv.FormatUint(uint64(notifications[len(notifications)-1].ID), 10)
	}

	enriched := make([]EnrichedNotification, len(notifications))
	actorCache := make(map[uint]*models.UserCompact)
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}

		actor, ok := actorCache[n.TriggeredBy]
		if !ok {
			if u, err := h.userRepository.GetUserByID(n.TriggeredBy); err == nil {
				compact := u.ToCompact()
				actor = &compact
			}
			actorCache[n.TriggeredBy] = actor
		}
		enriched[i].Actor = actor
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":          enriched,
		"isDone":         isDone,
		"continueCursor": continueCursor,
	})
}

// GetUnreadCount returns the caller's number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// MarkAllAsRead marks every unread notification of the caller as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
