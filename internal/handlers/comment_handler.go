package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
	"gorm.io/gorm"
)

// CommentHandler handles HTTP requests related to comments and comment likes
type CommentHandler struct {
	commentRepository     repositories.CommentRepository
	postRepository        repositories.PostRepository
	userRepository        repositories.UserRepository
	commentLikeRepository repositories.CommentLikeRepository
	notifier              *Notifier
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	commentLikeRepo repositories.CommentLikeRepository,
	notifier *Notifier,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:     commentRepo,
		postRepository:        postRepo,
		userRepository:        userRepo,
		commentLikeRepository: commentLikeRepo,
		notifier:              notifier,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.GET("/comments/:id/replies", h.GetReplies)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/likes/toggle", h.ToggleLike)
	g.GET("/comments/:id/likes", h.GetLikes)
}

// EnrichedComment is a comment joined with its author's current identity.
// AuthorName inside the comment itself stays the creation-time snapshot.
type EnrichedComment struct {
	models.Comment
	Author     *models.UserCompact `json:"author,omitempty"`
	LikesCount int64               `json:"likes_count"`
}

func (h *CommentHandler) enrichComments(comments []models.Comment) []EnrichedComment {
	enriched := make([]EnrichedComment, len(comments))
	userCache := make(map[uint]*models.UserCompact)

	for i, comment := range comments {
		enriched[i] = EnrichedComment{Comment: comment}

		author, ok := userCache[comment.AuthorID]
		if !ok {
			if user, err := h.userRepository.GetUserByID(comment.AuthorID); err == nil {
				compact := user.ToCompact()
				author = &compact
			}
			userCache[comment.AuthorID] = author
		}
		enriched[i].Author = author

		if count, err := h.commentLikeRepository.GetLikesCount(comment.ID); err == nil {
			enriched[i].LikesCount = count
		}
	}
	return enriched
}

// CreateComment creates a comment on a post, or a reply when parent_comment_id
// is given. The author's display name is snapshotted so later renames do not
// rewrite history. The post author is notified unless they wrote the comment.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if req.ParentCommentID != nil {
		parent, err := h.commentRepository.GetCommentByID(*req.ParentCommentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "Parent comment not found")
		}
		if parent.PostID != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		PostID:          postID,
		AuthorID:        user.ID,
		AuthorName:      user.Name,
		ParentCommentID: req.ParentCommentID,
		Body:            req.Body,
	}

	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if postAuthor, err := h.userRepository.GetUserByFirebaseUID(post.AuthorID); err == nil {
		h.notifier.Notify(user, postAuthor.ID, models.NotificationTypeComment,
			user.Name+" commented on your post", postID, &comment.ID)
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID retrieves all comments for a post, newest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.enrichComments(comments))
}

// GetReplies retrieves the direct replies of a comment, oldest first
func (h *CommentHandler) GetReplies(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	replies, err := h.commentRepository.GetReplies(uint(commentID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.enrichComments(replies))
}

// UpdateComment replaces a comment's body. The edited flag is the OR of its
// previous value and "body changed", so it never clears once set, even when
// the text is edited back to the original.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if comment.AuthorID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	comment.IsEdited = comment.IsEdited || req.Body != comment.Body
	comment.Body = req.Body

	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment together with its entire reply subtree
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if comment.AuthorID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if _, err := h.commentRepository.DeleteSubtree(uint(commentID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// ToggleLike toggles the caller's like on a comment. The comment author is
// notified on the like path only; unliking and self-likes stay silent.
func (h *CommentHandler) ToggleLike(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	hasLiked, err := h.commentLikeRepository.HasUserLikedComment(comment.ID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	liked := false
	if hasLiked {
		if err := h.commentLikeRepository.DeleteCommentLike(comment.ID, user.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		like := &models.CommentLike{CommentID: comment.ID, UserID: user.ID}
		if err := h.commentLikeRepository.CreateCommentLike(like); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		liked = true

		h.notifier.Notify(user, comment.AuthorID, models.NotificationTypeLike,
			user.Name+" liked your comment", comment.PostID, &comment.ID)
	}

	count, _ := h.commentLikeRepository.GetLikesCount(comment.ID)
	return c.JSON(http.StatusOK, echo.Map{"liked": liked, "likes_count": count})
}

// GetLikes retrieves the likes on a comment with the likers' identities joined
func (h *CommentHandler) GetLikes(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	likes, err := h.commentLikeRepository.GetLikesByCommentID(uint(commentID))
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
