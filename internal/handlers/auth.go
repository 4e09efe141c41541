package handlers

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
	"gorm.io/gorm"
)

// AuthHandler syncs identity-provider accounts into the local users table.
// Authentication itself is fully delegated to Firebase; this handler only
// mirrors the verified account so the rest of the API can join on a local id.
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/sync", h.Sync)
}

// SyncRequest defines the request body for the account sync endpoint
type SyncRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// Sync verifies a Firebase ID token and upserts the local user record:
// created on first sight, name/email/avatar refreshed afterwards.
func (h *AuthHandler) Sync(c echo.Context) error {
	var req SyncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(token.UID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
		}
		user = &models.User{
			Name:        name,
			Email:       email,
			AvatarURL:   picture,
			FirebaseUID: token.UID,
		}
		if err := h.userRepository.CreateUser(user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
		}
		return c.JSON(http.StatusCreated, user)
	}

	if email != "" {
		user.Email = email
	}
	if name != "" {
		user.Name = name
	}
	if picture != "" {
		user.AvatarURL = picture
	}
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user details")
	}

	return c.JSON(http.StatusOK, user)
}
