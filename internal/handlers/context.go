package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
)

// getFirebaseUID returns the Firebase UID stored by the auth middleware, or ""
func getFirebaseUID(c echo.Context) string {
	uid, _ := c.Get("firebaseUID").(string)
	return uid
}

// currentUser resolves the authenticated actor's local user record. It is the
// first check of every mutation: no verified UID or no synced profile means
// the request aborts with 401 before anything is written.
func currentUser(c echo.Context, userRepo repositories.UserRepository) (*models.User, error) {
	uid := getFirebaseUID(c)
	if uid == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := userRepo.GetUserByFirebaseUID(uid)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found in database")
	}
	return user, nil
}
