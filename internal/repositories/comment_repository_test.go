package repositories

import (
	"testing"

	"github.com/quillspace/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createComment(t *testing.T, repo CommentRepository, postID string, authorID uint, parentID *uint, body string) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		PostID:          postID,
		AuthorID:        authorID,
		AuthorName:      "tester",
		ParentCommentID: parentID,
		Body:            body,
	}
	require.NoError(t, repo.CreateComment(comment))
	return comment
}

func TestDeleteSubtreeRemovesAllDescendants(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresCommentRepository(db)

	// root -> child1 -> grandchild, root -> child2; sibling stays untouched
	root := createComment(t, repo, "post1", 1, nil, "root")
	child1 := createComment(t, repo, "post1", 2, &root.ID, "child1")
	createComment(t, repo, "post1", 3, &child1.ID, "grandchild")
	createComment(t, repo, "post1", 4, &root.ID, "child2")
	sibling := createComment(t, repo, "post1", 5, nil, "sibling")

	deleted, err := repo.DeleteSubtree(root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	var remaining []models.Comment
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, sibling.ID, remaining[0].ID)
}

func TestDeleteSubtreeLeafOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresCommentRepository(db)

	root := createComment(t, repo, "post1", 1, nil, "root")
	leaf := createComment(t, repo, "post1", 2, &root.ID, "leaf")

	deleted, err := repo.DeleteSubtree(leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetCommentByID(root.ID)
	assert.NoError(t, err)
}

func TestDeleteByPostIDLeavesNoOrphans(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresCommentRepository(db)

	root := createComment(t, repo, "postA", 1, nil, "root")
	createComment(t, repo, "postA", 2, &root.ID, "reply")
	other := createComment(t, repo, "postB", 3, nil, "other post")

	deleted, err := repo.DeleteByPostID("postA")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining []models.Comment
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)
}

func TestGetRepliesReturnsDirectChildrenOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresCommentRepository(db)

	root := createComment(t, repo, "post1", 1, nil, "root")
	child := createComment(t, repo, "post1", 2, &root.ID, "child")
	createComment(t, repo, "post1", 3, &child.ID, "grandchild")

	replies, err := repo.GetReplies(root.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, child.ID, replies[0].ID)
}
