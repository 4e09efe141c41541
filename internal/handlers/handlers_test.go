package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
	"github.com/quillspace/backend/validators"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Follow{},
		&models.Notification{},
		&models.Message{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, uid string) *models.User {
	t.Helper()
	user := &models.User{
		Name:        name,
		Email:       strings.ToLower(name) + "@example.com",
		FirebaseUID: uid,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// newTestContext builds an echo context the way the auth middleware leaves it:
// validator installed and the caller's Firebase UID set.
func newTestContext(method, path, body, uid string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validators.NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != "" {
		c.Set("firebaseUID", uid)
	}
	return c, rec
}

// httpStatus unwraps the status code a handler error would produce
func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return he.Code
}

// fakePostRepository is an in-memory PostRepository so relational handler
// tests do not need a running MongoDB.
type fakePostRepository struct {
	posts map[string]models.Post
	order []string
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{posts: make(map[string]models.Post)}
}

func (f *fakePostRepository) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	id := post.ID.Hex()
	f.posts[id] = *post
	f.order = append([]string{id}, f.order...)
	return nil
}

func (f *fakePostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return &post, nil
}

func (f *fakePostRepository) ListPosts(_ context.Context, cursor string, limit int64) ([]models.Post, error) {
	var out []models.Post
	skipping := cursor != ""
	for _, id := range f.order {
		if skipping {
			if id == cursor {
				skipping = false
			}
			continue
		}
		out = append(out, f.posts[id])
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakePostRepository) ListByAuthors(ctx context.Context, authorIDs []string, cursor string, limit int64) ([]models.Post, error) {
	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	all, err := f.ListPosts(ctx, cursor, int64(len(f.order)))
	if err != nil {
		return nil, err
	}
	var out []models.Post
	for _, post := range all {
		if authors[post.AuthorID] {
			out = append(out, post)
			if int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakePostRepository) ListRecent(ctx context.Context, limit int64) ([]models.Post, error) {
	return f.ListPosts(ctx, "", limit)
}

func (f *fakePostRepository) DeletePost(_ context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(f.posts, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakePostRepository) SearchByTitle(ctx context.Context, term string, limit int64) ([]models.Post, error) {
	return f.search(ctx, term, limit, func(p models.Post) string { return p.Title })
}

func (f *fakePostRepository) SearchByBody(ctx context.Context, term string, limit int64) ([]models.Post, error) {
	return f.search(ctx, term, limit, func(p models.Post) string { return p.Body })
}

func (f *fakePostRepository) search(ctx context.Context, term string, limit int64, field func(models.Post) string) ([]models.Post, error) {
	all, err := f.ListPosts(ctx, "", int64(len(f.order)))
	if err != nil {
		return nil, err
	}
	var out []models.Post
	for _, post := range all {
		if strings.Contains(strings.ToLower(field(post)), strings.ToLower(term)) {
			out = append(out, post)
			if int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakePostRepository) CountByAuthor(_ context.Context, authorID string) (int64, error) {
	var count int64
	for _, post := range f.posts {
		if post.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

// fakeBlobStore satisfies BlobStore without talking to object storage
type fakeBlobStore struct{}

func (fakeBlobStore) GenerateUploadURL(context.Context) (string, string, error) {
	return "images/test-key", "https://blob.test/upload", nil
}

func (fakeBlobStore) ResolveURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return "https://blob.test/" + key, nil
}
