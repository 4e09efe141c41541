package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// BlobStore is the slice of the blob storage client the post handler needs:
// presigned upload URLs for new images, read-time URL resolution for serving.
type BlobStore interface {
	GenerateUploadURL(ctx context.Context) (key, url string, err error)
	ResolveURL(ctx context.Context, key string) (string, error)
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository     repositories.PostRepository
	userRepository     repositories.UserRepository
	commentRepository  repositories.CommentRepository
	postLikeRepository repositories.PostLikeRepository
	followRepository   repositories.FollowRepository
	blobStore          BlobStore
	notifier           *Notifier
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	postLikeRepo repositories.PostLikeRepository,
	followRepo repositories.FollowRepository,
	blobStore BlobStore,
	notifier *Notifier,
) *PostHandler {
	return &PostHandler{
		postRepository:     postRepo,
		userRepository:     userRepo,
		commentRepository:  commentRepo,
		postLikeRepository: postLikeRepo,
		followRepository:   followRepo,
		blobStore:          blobStore,
		notifier:           notifier,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.ListPosts)
	g.GET("/posts/feed", h.ListFollowingFeed)
	g.GET("/posts/search", h.SearchPosts)
	g.POST("/posts/upload-url", h.GenerateUploadURL)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// EnrichedPost is a post joined with its author and a freshly resolved image URL
type EnrichedPost struct {
	models.Post
	Author     *models.UserCompact `json:"author,omitempty"`
	ImageURL   string              `json:"image_url,omitempty"`
	LikesCount int64               `json:"likes_count"`
}

// enrichPosts joins author identity and resolves image URLs at read time. The
// resolved URL is never persisted, so storage or profile changes show up on
// the next read without any invalidation step.
func (h *PostHandler) enrichPosts(ctx context.Context, posts []models.Post) []EnrichedPost {
	enriched := make([]EnrichedPost, len(posts))
	userCache := make(map[string]*models.UserCompact)

	for i, post := range posts {
		enriched[i] = EnrichedPost{Post: post}

		author, ok := userCache[post.AuthorID]
		if !ok {
			if user, err := h.userRepository.GetUserByFirebaseUID(post.AuthorID); err == nil {
				compact := user.ToCompact()
				author = &compact
			}
			userCache[post.AuthorID] = author
		}
		enriched[i].Author = author

		if url, err := h.blobStore.ResolveURL(ctx, post.ImageObjectKey); err == nil {
			enriched[i].ImageURL = url
		}

		if count, err := h.postLikeRepository.GetLikesCountByPostID(post.ID.Hex()); err == nil {
			enriched[i].LikesCount = count
		}
	}
	return enriched
}

// CreatePost creates a new post and fans out one notification per follower of
// the author. The fan-out is synchronous but not atomic with the insert; a
// failed notification is logged and skipped.
func (h *PostHandler) CreatePost(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		Title:          req.Title,
		Body:           req.Body,
		AuthorID:       user.FirebaseUID,
		ImageObjectKey: req.ImageObjectKey,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followerIDs, err := h.followRepository.GetFollowerIDs(user.ID)
	if err != nil {
		logrus.Errorf("post fan-out: listing followers of user %d: %v", user.ID, err)
		followerIDs = nil
	}
	for _, followerID := range followerIDs {
		if err := h.notifier.Notify(user, followerID, models.NotificationTypePost,
			user.Name+" published a new post: "+post.Title, post.ID.Hex(), nil); err != nil {
			logrus.Errorf("post fan-out: notifying user %d: %v", followerID, err)
		}
	}

	return c.JSON(http.StatusCreated, post)
}

// ListPosts returns posts newest first as a cursor page {items, isDone, continueCursor}
func (h *PostHandler) ListPosts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	cursor := c.QueryParam("cursor")

	// Fetch one extra row to learn whether another page exists
	posts, err := h.postRepository.ListPosts(c.Request().Context(), cursor, int64(limit)+1)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	isDone := len(posts) <= limit
	if !isDone {
		posts = posts[:limit]
	}

	continueCursor := ""
	if len(posts) > 0 {
		continueCursor = posts[len(posts)-1].ID.Hex()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":          h.enrichPosts(c.Request().Context(), posts),
		"isDone":         isDone,
		"continueCursor": continueCursor,
	})
}

// ListFollowingFeed returns posts by the caller and the users they follow,
// newest first, with the same cursor page shape as ListPosts.
func (h *PostHandler) ListFollowingFeed(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	cursor := c.QueryParam("cursor")

	following, err := h.followRepository.GetFollowing(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authorIDs := make([]string, 0, len(following)+1)
	authorIDs = append(authorIDs, user.FirebaseUID)
	for _, followed := range following {
		authorIDs = append(authorIDs, followed.FirebaseUID)
	}

	posts, err := h.postRepository.ListByAuthors(c.Request().Context(), authorIDs, cursor, int64(limit)+1)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	isDone := len(posts) <= limit
	if !isDone {
		posts = posts[:limit]
	}

	continueCursor := ""
	if len(posts) > 0 {
		continueCursor = posts[len(posts)-1].ID.Hex()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":          h.enrichPosts(c.Request().Context(), posts),
		"isDone":         isDone,
		"continueCursor": continueCursor,
	})
}

// GetPost retrieves one post by ID with author and image URL joined in
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	enriched := h.enrichPosts(c.Request().Context(), []models.Post{*post})
	return c.JSON(http.StatusOK, enriched[0])
}

// DeletePost deletes a post and flat-removes every comment referencing it.
// Replies share the root comment's post id, so a single post-id delete
// covers the whole comment forest under the post.
func (h *PostHandler) DeletePost(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	postID := c.Param("id")
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if post.AuthorID != user.FirebaseUID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if _, err := h.commentRepository.DeleteByPostID(postID); err != nil {
		logrus.Errorf("deleting comments of post %s: %v", postID, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SearchPosts queries the title field first and the body field second, each
// capped at limit, then merges with title priority and id dedup. Title
// matches must never be crowded out by body matches.
func (h *PostHandler) SearchPosts(c echo.Context) error {
	term := c.QueryParam("q")
	if len(term) < 2 {
		return c.JSON(http.StatusOK, echo.Map{"items": []EnrichedPost{}})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 25 {
		limit = 10
	}

	ctx := c.Request().Context()
	titleHits, err := h.postRepository.SearchByTitle(ctx, term, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	bodyHits, err := h.postRepository.SearchByBody(ctx, term, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	merged := repositories.MergeSearchResults(titleHits, bodyHits, limit)
	return c.JSON(http.StatusOK, echo.Map{"items": h.enrichPosts(ctx, merged)})
}

// GenerateUploadURL mints a presigned upload URL and the object key the client
// should pass back as image_object_key when creating the post
func (h *PostHandler) GenerateUploadURL(c echo.Context) error {
	if _, err := currentUser(c, h.userRepository); err != nil {
		return err
	}

	key, url, err := h.blobStore.GenerateUploadURL(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"upload_url": url,
		"object_key": key,
	})
}
