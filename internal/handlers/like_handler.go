package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
)

// LikeHandler handles HTTP requests related to post likes
type LikeHandler struct {
	postLikeRepository repositories.PostLikeRepository
	postRepository     repositories.PostRepository
	userRepository     repositories.UserRepository
	notifier           *Notifier
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	postLikeRepo repositories.PostLikeRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notifier *Notifier,
) *LikeHandler {
	return &LikeHandler{
		postLikeRepository: postLikeRepo,
		postRepository:     postRepo,
		userRepository:     userRepo,
		notifier:           notifier,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes/toggle", h.TogglePostLike)
	g.GET("/posts/:post_id/likes", h.GetLikesForPost)
	g.GET("/posts/:post_id/likes/count", h.GetLikesCountForPost)
	g.GET("/posts/:post_id/likes/status", h.GetUserLikeStatusForPost)
}

// TogglePostLike toggles the caller's like on a post: an existing row is
// deleted (unlike), otherwise one is created. The post author is notified on
// the like path only, never on unlike or self-like.
func (h *LikeHandler) TogglePostLike(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	hasLiked, err := h.postLikeRepository.HasUserLikedPost(postID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	liked := false
	if hasLiked {
		if err := h.postLikeRepository.DeleteLike(postID, user.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		like := &models.PostLike{PostID: postID, UserID: user.ID}
		if err := h.postLikeRepository.CreateLike(like); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		liked = true

		if postAuthor, err := h.userRepository.GetUserByFirebaseUID(post.AuthorID); err == nil {
			h.notifier.Notify(user, postAuthor.ID, models.NotificationTypeLike,
				user.Name+" liked your post", postID, nil)
		}
	}

	count, _ := h.postLikeRepository.GetLikesCountByPostID(postID)
	return c.JSON(http.StatusOK, echo.Map{"liked": liked, "likes_count": count})
}

// GetLikesForPost retrieves the likes on a post with the likers' identities joined
func (h *LikeHandler) GetLikesForPost(c echo.Context) error {
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	likes, err := h.postLikeRepository.GetLikesByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	userIDs := make([]uint, 0, len(likes))
	for _, like := range likes {
		userIDs = append(userIDs, like.UserID)
	}
	users, err := h.userRepository.GetUsersByIDs(userIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	compact := make([]models.UserCompact, len(users))
	for i, u := range users {
		compact[i] = u.ToCompact()
	}

	return c.JSON(http.StatusOK, echo.Map{"likes": likes, "users": compact})
}

// GetLikesCountForPost retrieves the total number of likes for a post
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	count, err := h.postLikeRepository.GetLikesCountByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// GetUserLikeStatusForPost reports whether the caller has liked a post
func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")

	hasLiked, err := h.postLikeRepository.HasUserLikedPost(postID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"liked": hasLiked})
}
