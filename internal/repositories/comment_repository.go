package repositories

import (
	"github.com/quillspace/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetCommentsByPostID(postID string) ([]models.Comment, error)
	GetReplies(parentCommentID uint) ([]models.Comment, error)
	UpdateComment(comment *models.Comment) error
	DeleteSubtree(id uint) (int64, error)
	DeleteByPostID(postID string) (int64, error)
	RecentAuthorIDs(limit int) ([]uint, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments for a specific post, newest first
func (r *PostgresCommentRepository) GetCommentsByPostID(postID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// GetReplies retrieves the direct replies of a comment, oldest first
func (r *PostgresCommentRepository) GetReplies(parentCommentID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.Where("parent_comment_id = ?", parentCommentID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateComment updates an existing comment in PostgreSQL
func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// DeleteSubtree deletes a comment together with its entire reply subtree.
// The tree is walked with a frontier worklist instead of recursion, so depth
// is bounded only by the number of levels actually stored, and the whole
// removal commits in one transaction.
func (r *PostgresCommentRepository) DeleteSubtree(id uint) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		all := []uint{id}
		frontier := []uint{id}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&models.Comment{}).
				Where("parent_comment_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			all = append(all, children...)
			frontier = children
		}

		res := tx.Where("id IN ?", all).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// DeleteByPostID removes every comment of a post in one statement. Replies
// carry the same post_id as their root comment, so no tree walk is needed.
func (r *PostgresCommentRepository) DeleteByPostID(postID string) (int64, error) {
	res := r.db.Where("post_id = ?", postID).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}

// RecentAuthorIDs returns the author IDs of the most recent comments
func (r *PostgresCommentRepository) RecentAuthorIDs(limit int) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Comment{}).
		Order("created_at DESC").
		Limit(limit).
		Pluck("author_id", &ids).Error
	return ids, err
}
