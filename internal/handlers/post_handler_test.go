package handlers

import (
	"context"
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

func newPostHandler(db *gorm.DB, postRepo repositories.PostRepository) *PostHandler {
	return NewPostHandler(
		postRepo,
		repositories.NewPostgresUserRepository(db),
		repositories.NewPostgresCommentRepository(db),
		repositories.NewPostgresPostLikeRepository(db),
		repositories.NewPostgresFollowRepository(db),
		fakeBlobStore{},
		NewNotifier(repositories.NewPostgresNotificationRepository(db)),
	)
}

type postPage struct {
	Items          []EnrichedPost `json:"items"`
	IsDone         bool           `json:"isDone"`
	ContinueCursor string         `json:"continueCursor"`
}

func TestListPostsPaginatesWithCursor(t *testing.T) {
	db := setupTestDB(t)
	postRepo := newFakePostRepository()
	h := newPostHandler(db, postRepo)

	author := seedUser(t, db, "Author", "uid-author")
	for i := 0; i < 5; i++ {
		post := &models.Post{Title: fmt.Sprintf("post %d", i), Body: "body", AuthorID: author.FirebaseUID}
		require.NoError(t, postRepo.CreatePost(context.Background(), post))
	}

	c, rec := newTestContext(http.MethodGet, "/?limit=2", "", author.FirebaseUID)
	require.NoError(t, h.ListPosts(c))

	var page postPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.False(t, page.IsDone)
	require.NotEmpty(t, page.ContinueCursor)
	assert.Equal(t, "post 4", page.Items[0].Title)

	// Follow the cursor until exhaustion; pages never overlap
	seen := map[string]bool{page.Items[0].ID.Hex(): true, page.Items[1].ID.Hex(): true}
	cursor := page.ContinueCursor
	total := 2
	for {
		c, rec = newTestContext(http.MethodGet, "/?limit=2&cursor="+cursor, "", author.FirebaseUID)
		require.NoError(t, h.ListPosts(c))
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		for _, item := range page.Items {
			id := item.ID.Hex()
			assert.False(t, seen[id], "post %s appeared on two pages", id)
			seen[id] = true
			total++
		}
		if page.IsDone {
			break
		}
		cursor = page.ContinueCursor
	}
	assert.Equal(t, 5, total)
}

func TestListPostsEnrichesAuthorAndImage(t *testing.T) {
	db := setupTestDB(t)
	postRepo := newFakePostRepository()
	h := newPostHandler(db, postRepo)

	author := seedUser(t, db, "Author", "uid-author")
	post := &models.Post{Title: "with image", Body: "body", AuthorID: author.FirebaseUID, ImageObjectKey: "images/abc"}
	require.NoError(t, postRepo.CreatePost(context.Background(), post))

	c, rec := newTestContext(http.MethodGet, "/", "", author.FirebaseUID)
	require.NoError(t, h.ListPosts(c))

	var page postPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Author)
	assert.Equal(t, author.ID, page.Items[0].Author.ID)
	assert.Equal(t, "https://blob.test/images/abc", page.Items[0].ImageURL)
}

func TestSearchPostsTitleMatchesFirst(t *testing.T) {
	db := setupTestDB(t)
	postRepo := newFakePostRepository()
	h := newPostHandler(db, postRepo)

	author := seedUser(t, db, "Author", "uid-author")
	bodyHit := &models.Post{Title: "unrelated", Body: "gophers everywhere", AuthorID: author.FirebaseUID}
	require.NoError(t, postRepo.CreatePost(context.Background(), bodyHit))
	titleHit := &models.Post{Title: "gopher news", Body: "nothing", AuthorID: author.FirebaseUID}
	require.NoError(t, postRepo.CreatePost(context.Background(), titleHit))

	c, rec := newTestContext(http.MethodGet, "/?q=gopher", "", author.FirebaseUID)
	require.NoError(t, h.SearchPosts(c))

	var resp struct {
		Items []EnrichedPost `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "gopher news", resp.Items[0].Title)
	assert.Equal(t, "unrelated", resp.Items[1].Title)
}

func TestSearchPostsShortTermReturnsEmpty(t *testing.T) {
	db := setupTestDB(t)
	h := newPostHandler(db, newFakePostRepository())
	user := seedUser(t, db, "Author", "uid-author")

	c, rec := newTestContext(http.MethodGet, "/?q=g", "", user.FirebaseUID)
	require.NoError(t, h.SearchPosts(c))

	var resp struct {
		Items []EnrichedPost `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
}

func TestDeletePostRejectsNonAuthor(t *testing.T) {
	db := setupTestDB(t)
	postRepo := newFakePostRepository()
	h := newPostHandler(db, postRepo)

	author := seedUser(t, db, "Author", "uid-author")
	intruder := seedUser(t, db, "Intruder", "uid-intruder")
	post := seedPost(t, postRepo, author.FirebaseUID)

	c, _ := newTestContext(http.MethodDelete, "/", "", intruder.FirebaseUID)
	c.SetPath("/posts/:id")
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())

	err := h.DeletePost(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))

	_, err = postRepo.GetPostByID(context.Background(), post.ID.Hex())
	assert.NoError(t, err)
}

func TestDeletePostRemovesComments(t *testing.T) {
	db := setupTestDB(t)
	postRepo := newFakePostRepository()
	h := newPostHandler(db, postRepo)

	author := seedUser(t, db, "Author", "uid-author")
	post := seedPost(t, postRepo, author.FirebaseUID)

	root := &models.Comment{PostID: post.ID.Hex(), AuthorID: author.ID, AuthorName: author.Name, Body: "root"}
	require.NoError(t, db.Create(root).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID.Hex(), AuthorID: author.ID, AuthorName: author.Name, ParentCommentID: &root.ID, Body: "reply"}).Error)

	c, rec := newTestContext(http.MethodDelete, "/", "", author.FirebaseUID)
	c.SetPath("/posts/:id")
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())

	require.NoError(t, h.DeletePost(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreatePostFansOutToFollowers(t *testing.T) {
	db := setupTestDB(t)
	postRepo := newFakePostRepository()
	h := newPostHandler(db, postRepo)

	author := seedUser(t, db, "Author", "uid-author")
	fan1 := seedUser(t, db, "FanOne", "uid-fan1")
	fan2 := seedUser(t, db, "FanTwo", "uid-fan2")
	require.NoError(t, db.Create(&models.Follow{FollowerID: fan1.ID, FollowingID: author.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: fan2.ID, FollowingID: author.ID}).Error)

	c, rec := newTestContext(http.MethodPost, "/", `{"title":"fresh","body":"content"}`, author.FirebaseUID)
	require.NoError(t, h.CreatePost(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var notifications []models.Notification
	require.NoError(t, db.Where("type = ?", models.NotificationTypePost).Find(&notifications).Error)
	require.Len(t, notifications, 2)

	recipients := []uint{notifications[0].RecipientID, notifications[1].RecipientID}
	assert.ElementsMatch(t, []uint{fan1.ID, fan2.ID}, recipients)
}
